package services

import "github.com/cppla/bootcamp-tracker/models"

// Policy decides who may change a submission.
type Policy struct {
	adminSecret string
}

// NewPolicy returns a Policy accepting the given admin secret. An empty secret disables admin access.
func NewPolicy(adminSecret string) *Policy {
	return &Policy{adminSecret: adminSecret}
}

// CanModify reports whether the requester owns sub or supplied the admin secret.
// requesterID 0 means no user id was given.
func (p *Policy) CanModify(sub *models.Submission, requesterID uint, secret string) bool {
	if sub == nil {
		return false
	}
	if requesterID != 0 && requesterID == sub.UserID {
		return true
	}
	return p.adminSecret != "" && secret == p.adminSecret
}
