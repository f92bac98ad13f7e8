/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vermethod

import (
	"fmt"
	"strings"

	"github.com/multiformats/go-multibase"
	"github.com/trustbloc/did-go/doc/did"
	vdrapi "github.com/trustbloc/did-go/vdr/api"

	"github.com/trustbloc/bbs2023-go/crypto-ext/pubkey"
	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
)

type didResolver interface {
	Resolve(did string, opts ...vdrapi.DIDMethodOption) (*did.DocResolution, error)
}

// VDRResolver resolves DID in order to find the Multikey a BBS proof was created with.
type VDRResolver struct {
	vdr didResolver
}

// NewVDRResolver creates VDRResolver.
func NewVDRResolver(vdr didResolver) *VDRResolver {
	return &VDRResolver{vdr: vdr}
}

// ResolveVerificationMethod resolves verification method by key id.
func (r *VDRResolver) ResolveVerificationMethod(verificationMethod string) (*models.VerificationMethod, error) {
	idSplit := strings.Split(verificationMethod, "#")
	if len(idSplit) != resolveDIDParts {
		return nil, fmt.Errorf("wrong id %s to resolve", idSplit)
	}

	methodDID, keyID := idSplit[0], "#"+idSplit[1]

	docResolution, err := r.vdr.Resolve(methodDID)
	if err != nil {
		return nil, fmt.Errorf("resolve DID %s: %w", methodDID, err)
	}

	if docResolution == nil || docResolution.DIDDocument == nil {
		return nil, fmt.Errorf("resolve DID %s: empty DID document", methodDID)
	}

	for _, verifications := range docResolution.DIDDocument.VerificationMethods() {
		for _, verification := range verifications {
			vm := verification.VerificationMethod

			if verification.Relationship == did.KeyAgreement || (vm.ID != verificationMethod && vm.ID != keyID) {
				continue
			}

			mk, err := multikeyOf(vm.Value)
			if err != nil {
				return nil, fmt.Errorf("public key %s: %w", verificationMethod, err)
			}

			controller := vm.Controller
			if controller == "" {
				controller = methodDID
			}

			return &models.VerificationMethod{
				ID:                 verificationMethod,
				Type:               vm.Type,
				Controller:         controller,
				PublicKeyMultibase: mk,
			}, nil
		}
	}

	return nil, fmt.Errorf("public key with KID %s is not found for DID %s", keyID, methodDID)
}

// multikeyOf re-encodes a decoded publicKeyMultibase value. A bare BLS12-381 G2 key
// gets its multicodec header back.
func multikeyOf(value []byte) (string, error) {
	if len(value) == pubkey.BLS12381G2KeySize {
		key, err := pubkey.NewBLS12381G2(value)
		if err != nil {
			return "", err
		}

		return key.Multikey()
	}

	return multibase.Encode(multibase.Base58BTC, value)
}
