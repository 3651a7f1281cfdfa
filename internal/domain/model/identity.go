package model

// FederatedIdentity is the verified subset of an external identity token.
type FederatedIdentity struct {
	Provider      string
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
}
