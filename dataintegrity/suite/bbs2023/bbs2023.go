/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbs2023

import (
	"errors"
	"fmt"

	"github.com/piprate/json-gold/ld"
	"go.uber.org/zap"

	"github.com/trustbloc/bbs2023-go/crypto-ext/bbs"
	"github.com/trustbloc/bbs2023-go/crypto-ext/pubkey"
	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
	"github.com/trustbloc/bbs2023-go/dataintegrity/sd"
	"github.com/trustbloc/bbs2023-go/dataintegrity/suite"
	jsonutil "github.com/trustbloc/bbs2023-go/util/json"
)

const (
	// SuiteType "bbs-2023" is the data integrity cryptosuite identifier for
	// selective disclosure BBS signatures, defined at:
	// https://www.w3.org/TR/vc-di-bbs/#bbs-2023
	SuiteType = "bbs-2023"

	ldCtxKey = "@context"
	proofKey = "proof"

	mandatoryGroup = "mandatory"
	selectiveGroup = "selective"
	combinedGroup  = "combined"
)

// SignerGetter returns a Signer, which must sign with the private key matching
// the public key of the given verification method.
type SignerGetter func(vm *models.VerificationMethod) (Signer, error)

// WithStaticSigner sets the Suite to use a fixed Signer, with externally-chosen signing key.
func WithStaticSigner(signer Signer) SignerGetter {
	return func(*models.VerificationMethod) (Signer, error) {
		return signer, nil
	}
}

// Suite implements the bbs-2023 data integrity cryptographic suite.
type Suite struct {
	ldLoader        ld.DocumentLoader
	signerGetter    SignerGetter
	prover          Prover
	proofVerifier   ProofVerifier
	encoder         MessageEncoder
	labelMapFactory LabelMapFactoryCreator
	logger          *zap.Logger
}

// Options provides initialization options for Suite.
type Options struct {
	LDDocumentLoader ld.DocumentLoader
	SignerGetter     SignerGetter
	Prover           Prover
	ProofVerifier    ProofVerifier
	// MessageEncoder defaults to UTF8MessageEncoder.
	MessageEncoder MessageEncoder
	// LabelMapFactory defaults to DefaultLabelMapFactory.
	LabelMapFactory LabelMapFactoryCreator
	Logger          *zap.Logger
}

// SuiteInitializer is the initializer for Suite.
type SuiteInitializer func() (suite.Suite, error)

// New constructs an initializer for Suite.
func New(options *Options) SuiteInitializer {
	return func() (suite.Suite, error) {
		s := &Suite{
			ldLoader:        options.LDDocumentLoader,
			signerGetter:    options.SignerGetter,
			prover:          options.Prover,
			proofVerifier:   options.ProofVerifier,
			encoder:         options.MessageEncoder,
			labelMapFactory: options.LabelMapFactory,
			logger:          options.Logger,
		}

		if s.prover == nil {
			s.prover = bbs.New()
		}

		if s.proofVerifier == nil {
			s.proofVerifier = bbs.New()
		}

		if s.encoder == nil {
			s.encoder = UTF8MessageEncoder{}
		}

		if s.labelMapFactory == nil {
			s.labelMapFactory = DefaultLabelMapFactory
		}

		if s.logger == nil {
			s.logger = zap.NewNop()
		}

		return s, nil
	}
}

type initializer SuiteInitializer

// Signer private, implements suite.SignerInitializer.
func (i initializer) Signer() (suite.Signer, error) {
	return i()
}

// Verifier private, implements suite.VerifierInitializer.
func (i initializer) Verifier() (suite.Verifier, error) {
	return i()
}

// Deriver private, implements suite.DeriverInitializer.
func (i initializer) Deriver() (suite.Deriver, error) {
	return i()
}

// Type private, implements suite.SignerInitializer, suite.VerifierInitializer
// and suite.DeriverInitializer.
func (i initializer) Type() []string {
	return []string{SuiteType}
}

// SignerInitializerOptions provides options for a SignerInitializer.
type SignerInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader
	SignerGetter     SignerGetter
	MessageEncoder   MessageEncoder
	Logger           *zap.Logger
}

// NewSignerInitializer returns a suite.SignerInitializer that initializes a bbs-2023
// signing Suite with the given SignerInitializerOptions.
func NewSignerInitializer(options *SignerInitializerOptions) suite.SignerInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		SignerGetter:     options.SignerGetter,
		MessageEncoder:   options.MessageEncoder,
		Logger:           options.Logger,
	}))
}

// DeriverInitializerOptions provides options for a DeriverInitializer.
type DeriverInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader // required
	Prover           Prover            // optional
	Logger           *zap.Logger       // optional
}

// NewDeriverInitializer returns a suite.DeriverInitializer that initializes a
// bbs-2023 deriving Suite with the given DeriverInitializerOptions.
func NewDeriverInitializer(options *DeriverInitializerOptions) suite.DeriverInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		Prover:           options.Prover,
		Logger:           options.Logger,
	}))
}

// VerifierInitializerOptions provides options for a VerifierInitializer.
type VerifierInitializerOptions struct {
	LDDocumentLoader ld.DocumentLoader // required
	ProofVerifier    ProofVerifier     // optional
	Logger           *zap.Logger       // optional
}

// NewVerifierInitializer returns a suite.VerifierInitializer that initializes a
// bbs-2023 verification Suite with the given VerifierInitializerOptions.
func NewVerifierInitializer(options *VerifierInitializerOptions) suite.VerifierInitializer {
	return initializer(New(&Options{
		LDDocumentLoader: options.LDDocumentLoader,
		ProofVerifier:    options.ProofVerifier,
		Logger:           options.Logger,
	}))
}

type hashResult struct {
	hash []byte
	err  error
}

// CreateProof implements the bbs-2023 cryptographic suite for Add Proof, creating a base proof:
// https://www.w3.org/TR/vc-di-bbs/#add-base-proof-bbs-2023
func (s *Suite) CreateProof(doc []byte, opts *models.ProofOptions) (*models.Proof, error) {
	if opts.SuiteType == "" {
		opts.SuiteType = SuiteType
	}

	if err := checkProofConfiguration(opts.ProofType, opts.SuiteType); err != nil {
		return nil, err
	}

	if opts.VerificationMethod == nil {
		return nil, fmt.Errorf("%w: verification method is required", suite.ErrInvalidProofConfiguration)
	}

	docData, err := parseDocument(doc)
	if err != nil {
		return nil, err
	}

	proofHashCh := s.hashProofConfig(proofConfig(docData[ldCtxKey], opts))

	h, err := sd.NewHMAC(nil)
	if err != nil {
		return nil, err
	}

	res, err := sd.CanonicalizeAndGroup(docData, s.labelMapFactory(h),
		map[string][]string{mandatoryGroup: opts.MandatoryPointers}, s.sdOpts()...)
	if err != nil {
		return nil, err
	}

	proofHash := <-proofHashCh
	if proofHash.err != nil {
		return nil, proofHash.err
	}

	mandatory := res.Groups[mandatoryGroup]
	header := append(proofHash.hash, sd.HashMandatory(mandatory.MatchingStatements())...)
	messages := encodeMessages(s.encoder, mandatory.NonMatchingStatements())

	signer, err := s.signerGetter(opts.VerificationMethod)
	if err != nil {
		return nil, fmt.Errorf("%w: get signer: %w", suite.ErrSignatureBinding, err)
	}

	sig, err := signer.Sign(header, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: sign: %w", suite.ErrSignatureBinding, err)
	}

	proofValue, err := SerializeBaseProofValue(&BaseProofValue{
		BBSSignature:      sig,
		BBSHeader:         header,
		PublicKey:         signer.PublicKey(),
		HMACKey:           h.Key(),
		MandatoryPointers: opts.MandatoryPointers,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("created bbs-2023 base proof",
		zap.String("verificationMethod", opts.VerificationMethod.ID),
		zap.Int("mandatoryStatements", len(mandatory.Matching)),
		zap.Int("messages", len(messages)))

	p := &models.Proof{
		ID:                 opts.ProofID,
		Type:               models.DataIntegrityProof,
		CryptoSuite:        opts.SuiteType,
		ProofPurpose:       opts.Purpose,
		Domain:             opts.Domain,
		Challenge:          opts.Challenge,
		VerificationMethod: opts.VerificationMethod.ID,
		ProofValue:         proofValue,
	}

	if !opts.Created.IsZero() {
		p.Created = opts.Created.Format(models.DateTimeFormat)
	}

	if !opts.Expires.IsZero() {
		p.Expires = opts.Expires.Format(models.DateTimeFormat)
	}

	return p, nil
}

// DeriveProof implements the bbs-2023 cryptographic suite for deriving a
// selective disclosure proof from a base proof:
// https://www.w3.org/TR/vc-di-bbs/#add-derived-proof-bbs-2023
func (s *Suite) DeriveProof(
	doc []byte,
	baseProof *models.Proof,
	opts *models.DeriveOptions,
) (map[string]interface{}, *models.Proof, error) {
	if err := checkProofConfiguration(baseProof.Type, baseProof.CryptoSuite); err != nil {
		return nil, nil, err
	}

	if opts.Purpose != "" && opts.Purpose != baseProof.ProofPurpose {
		return nil, nil, fmt.Errorf("%w: base proof purpose %q does not match %q",
			suite.ErrInvalidProofConfiguration, baseProof.ProofPurpose, opts.Purpose)
	}

	base, err := ParseBaseProofValue(baseProof.ProofValue)
	if err != nil {
		return nil, nil, err
	}

	if len(base.MandatoryPointers) == 0 && len(opts.SelectivePointers) == 0 {
		return nil, nil, fmt.Errorf("%w: nothing selected for disclosure", sd.ErrSelection)
	}

	docData, err := parseDocument(doc)
	if err != nil {
		return nil, nil, err
	}

	h, err := sd.NewHMAC(base.HMACKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", suite.ErrMalformedProof, err)
	}

	combinedPointers := append(append([]string{}, base.MandatoryPointers...), opts.SelectivePointers...)

	res, err := sd.CanonicalizeAndGroup(docData, s.labelMapFactory(h), map[string][]string{
		mandatoryGroup: base.MandatoryPointers,
		selectiveGroup: opts.SelectivePointers,
		combinedGroup:  combinedPointers,
	}, s.sdOpts()...)
	if err != nil {
		return nil, nil, err
	}

	mandatory, selective, combined := res.Groups[mandatoryGroup], res.Groups[selectiveGroup], res.Groups[combinedGroup]

	if len(combined.Matching) == 0 {
		return nil, nil, fmt.Errorf("%w: pointers select no statement", sd.ErrSelection)
	}

	mandatoryIndexes := MandatoryIndexes(combined, mandatory)
	selectiveIndexes := SelectiveIndexes(mandatory, selective)
	messages := encodeMessages(s.encoder, mandatory.NonMatchingStatements())

	revealDoc, err := sd.SelectJSONLD(docData, combinedPointers)
	if err != nil {
		return nil, nil, err
	}

	verifierLabelMap, err := sd.VerifierLabelMap(combined, res.LabelMap)
	if err != nil {
		return nil, nil, err
	}

	bbsProof, err := s.prover.DeriveProof(base.PublicKey, base.BBSSignature, base.BBSHeader,
		opts.PresentationHeader, messages, selectiveIndexes)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: derive proof: %w", suite.ErrSignatureBinding, err)
	}

	proofValue, err := SerializeDisclosureProofValue(&DisclosureProofValue{
		BBSProof:           bbsProof,
		LabelMap:           verifierLabelMap,
		MandatoryIndexes:   mandatoryIndexes,
		SelectiveIndexes:   selectiveIndexes,
		PresentationHeader: opts.PresentationHeader,
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Debug("derived bbs-2023 proof",
		zap.Int("disclosedStatements", len(combined.Matching)),
		zap.Int("mandatoryStatements", len(mandatoryIndexes)),
		zap.Int("selectiveMessages", len(selectiveIndexes)))

	derived := *baseProof
	derived.ProofValue = proofValue

	return revealDoc, &derived, nil
}

// VerifyProof implements the bbs-2023 cryptographic suite for Verify Proof of a derived proof:
// https://www.w3.org/TR/vc-di-bbs/#verify-derived-proof-bbs-2023
func (s *Suite) VerifyProof(doc []byte, proof *models.Proof, opts *models.ProofOptions) error {
	if opts.SuiteType == "" {
		opts.SuiteType = SuiteType
	}

	if err := checkProofConfiguration(proof.Type, proof.CryptoSuite); err != nil {
		return err
	}

	if err := checkProofConfiguration(opts.ProofType, opts.SuiteType); err != nil {
		return err
	}

	if IsBaseProofValue(proof.ProofValue) {
		return fmt.Errorf("%w: a base proof must be derived before it can be verified", suite.ErrMalformedProof)
	}

	dv, err := ParseDisclosureProofValue(proof.ProofValue)
	if err != nil {
		return err
	}

	pub, err := publicKey(opts.VerificationMethod)
	if err != nil {
		return err
	}

	docData, err := parseDocument(doc)
	if err != nil {
		return err
	}

	proofHashCh := s.hashProofConfig(proofConfig(docData[ldCtxKey], opts))

	nquads, err := sd.LabelReplacementCanonicalizeJSONLD(docData, sd.CreateLabelMapFunction(dv.LabelMap), s.sdOpts()...)
	if err != nil {
		return err
	}

	proofHash := <-proofHashCh
	if proofHash.err != nil {
		return proofHash.err
	}

	mandatory, nonMandatory, ok := splitByIndexes(nquads, dv.MandatoryIndexes)
	if !ok {
		return fmt.Errorf("%w: mandatory indexes do not match the disclosed statements", suite.ErrVerificationFailed)
	}

	header := append(proofHash.hash, sd.HashMandatory(mandatory)...)

	err = s.proofVerifier.VerifyProof(pub.BytesKey.Bytes, dv.BBSProof, header, dv.PresentationHeader,
		encodeMessages(s.encoder, nonMandatory), dv.SelectiveIndexes)
	if err != nil {
		s.logger.Debug("bbs-2023 proof verification failed", zap.Error(err))

		return fmt.Errorf("%w: %w", suite.ErrVerificationFailed, err)
	}

	return nil
}

// RequiresCreated returns false, as the bbs-2023 cryptographic suite does not
// require the use of the models.Proof.Created field.
func (s *Suite) RequiresCreated() bool {
	return false
}

func (s *Suite) sdOpts() []sd.Opt {
	return []sd.Opt{sd.WithDocumentLoader(s.ldLoader), sd.WithLogger(s.logger)}
}

// hashProofConfig hashes the proof configuration concurrently with the caller.
func (s *Suite) hashProofConfig(conf map[string]interface{}) <-chan hashResult {
	ch := make(chan hashResult, 1)

	go func() {
		h, err := sd.HashProofConfig(conf, s.sdOpts()...)
		ch <- hashResult{hash: h, err: err}
	}()

	return ch
}

func checkProofConfiguration(proofType, suiteType string) error {
	if proofType != models.DataIntegrityProof {
		return fmt.Errorf("%w: unsupported proof type %q", suite.ErrInvalidProofConfiguration, proofType)
	}

	if suiteType != SuiteType {
		return fmt.Errorf("%w: unsupported cryptosuite %q", suite.ErrInvalidProofConfiguration, suiteType)
	}

	return nil
}

// parseDocument decodes doc and drops any proof it is secured with.
func parseDocument(doc []byte) (map[string]interface{}, error) {
	docData, err := jsonutil.ToMap(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: bbs-2023 suite expects JSON-LD payload: %w", suite.ErrProofTransformation, err)
	}

	if docData == nil {
		return nil, fmt.Errorf("%w: bbs-2023 suite expects JSON-LD payload", suite.ErrProofTransformation)
	}

	return jsonutil.CopyExcept(docData, proofKey), nil
}

func publicKey(vm *models.VerificationMethod) (*pubkey.PublicKey, error) {
	if vm == nil {
		return nil, fmt.Errorf("%w: verification method is required", suite.ErrInvalidProofConfiguration)
	}

	if vm.Type != "" && vm.Type != models.MultikeyType {
		return nil, fmt.Errorf("%w: unsupported verification method type %q",
			suite.ErrInvalidProofConfiguration, vm.Type)
	}

	pub, err := pubkey.FromMultikey(vm.PublicKeyMultibase)
	if err != nil {
		return nil, errors.Join(suite.ErrInvalidProofConfiguration, err)
	}

	return pub, nil
}

func proofConfig(docCtx interface{}, opts *models.ProofOptions) map[string]interface{} {
	vmID := opts.VerificationMethodID
	if vmID == "" && opts.VerificationMethod != nil {
		vmID = opts.VerificationMethod.ID
	}

	proof := map[string]interface{}{
		ldCtxKey:             docCtx,
		"type":               models.DataIntegrityProof,
		"cryptosuite":        opts.SuiteType,
		"verificationMethod": vmID,
		"proofPurpose":       opts.Purpose,
	}

	if opts.ProofID != "" {
		proof["id"] = opts.ProofID
	}

	if !opts.Created.IsZero() {
		proof["created"] = opts.Created.Format(models.DateTimeFormat)
	}

	if !opts.Expires.IsZero() {
		proof["expires"] = opts.Expires.Format(models.DateTimeFormat)
	}

	if opts.Challenge != "" {
		proof["challenge"] = opts.Challenge
	}

	if opts.Domain != "" {
		proof["domain"] = opts.Domain
	}

	return proof
}
