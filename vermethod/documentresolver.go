/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vermethod resolves Multikey verification methods from controller documents and DID documents.
package vermethod

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/trustbloc/bbs2023-go/dataintegrity/models"
)

const (
	resolveDIDParts = 2
)

// verification relationships that may carry proof keys; keyAgreement is excluded.
var relationships = []string{"verificationMethod", "assertionMethod", "authentication", "capabilityInvocation"}

type controllerResolver interface {
	ResolveController(controller string) ([]byte, error)
}

// ControllerDocuments is a controllerResolver over a fixed set of JSON controller documents.
type ControllerDocuments map[string][]byte

// ResolveController returns the controller document with the given id.
func (d ControllerDocuments) ResolveController(controller string) ([]byte, error) {
	doc, ok := d[controller]
	if !ok {
		return nil, fmt.Errorf("controller %s not found", controller)
	}

	return doc, nil
}

// DocumentResolver resolves verification methods by looking them up in the
// controller document of their controller, typically a DID document.
type DocumentResolver struct {
	controllers controllerResolver
}

// NewDocumentResolver creates DocumentResolver.
func NewDocumentResolver(controllers controllerResolver) *DocumentResolver {
	return &DocumentResolver{controllers: controllers}
}

// ResolveVerificationMethod resolves verification method by key id.
func (r *DocumentResolver) ResolveVerificationMethod(verificationMethod string) (*models.VerificationMethod, error) {
	idSplit := strings.Split(verificationMethod, "#")
	if len(idSplit) != resolveDIDParts {
		return nil, fmt.Errorf("wrong id %s to resolve", idSplit)
	}

	controller, keyID := idSplit[0], "#"+idSplit[1]

	doc, err := r.controllers.ResolveController(controller)
	if err != nil {
		return nil, fmt.Errorf("resolve controller %s: %w", controller, err)
	}

	if !gjson.ValidBytes(doc) {
		return nil, fmt.Errorf("controller document of %s is not valid JSON", controller)
	}

	parsed := gjson.ParseBytes(doc)

	for _, rel := range relationships {
		for _, entry := range parsed.Get(rel).Array() {
			if !entry.IsObject() {
				continue
			}

			id := entry.Get("id").String()
			if id != verificationMethod && id != keyID {
				continue
			}

			return &models.VerificationMethod{
				ID:                 verificationMethod,
				Type:               entry.Get("type").String(),
				Controller:         controllerOf(entry, controller),
				PublicKeyMultibase: entry.Get("publicKeyMultibase").String(),
			}, nil
		}
	}

	return nil, fmt.Errorf("public key with KID %s is not found for controller %s", keyID, controller)
}

func controllerOf(entry gjson.Result, fallback string) string {
	if c := entry.Get("controller"); c.Exists() {
		return c.String()
	}

	return fallback
}
