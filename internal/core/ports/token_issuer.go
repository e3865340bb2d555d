package ports

// TokenIssuer produces and checks signed bearer tokens carrying a user id as
// their sole identity claim.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}
