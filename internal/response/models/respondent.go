package models

import (
	dErrors "canvass/pkg/domain-errors"
)

// Respondent is the identity submitting a response: either fully anonymous
// (no type, no id) or fully authenticated (both set).
//
// Invariant: setting exactly one of type and id is invalid.
type Respondent struct {
	identityType string
	identityID   string
}

// AnonymousRespondent is the unauthenticated identity.
func AnonymousRespondent() Respondent { return Respondent{} }

// NewRespondent validates the anonymous-xor-authenticated invariant.
func NewRespondent(identityType, identityID string) (Respondent, error) {
	if (identityType == "") != (identityID == "") {
		return Respondent{}, dErrors.New(dErrors.CodeValidation,
			"respondent type and id must both be set or both be empty")
	}
	return Respondent{identityType: identityType, identityID: identityID}, nil
}

// AuthenticatedRespondent builds an authenticated identity, e.g. ("user", uid).
func AuthenticatedRespondent(identityType, identityID string) (Respondent, error) {
	if identityType == "" || identityID == "" {
		return Respondent{}, dErrors.New(dErrors.CodeValidation,
			"authenticated respondent requires both type and id")
	}
	return Respondent{identityType: identityType, identityID: identityID}, nil
}

// MustRespondent builds a Respondent, panicking if invalid. Tests only.
func MustRespondent(identityType, identityID string) Respondent {
	r, err := NewRespondent(identityType, identityID)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Respondent) IsAnonymous() bool { return r.identityType == "" }

func (r Respondent) Type() string { return r.identityType }

func (r Respondent) ID() string { return r.identityID }

func (r Respondent) Equal(other Respondent) bool {
	return r.identityType == other.identityType && r.identityID == other.identityID
}
