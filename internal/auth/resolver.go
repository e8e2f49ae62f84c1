package auth

import (
	"context"
	"strings"

	"queueroom/internal/apperr"

	"github.com/rs/zerolog/log"
)

// Identity is an authenticated registered user.
type Identity struct {
	UserID string
	Name   string
}

// UserLookup confirms that a token's user still exists.
type UserLookup interface {
	UserExists(ctx context.Context, id, name string) (bool, error)
}

// ProofKind tells which variant a Proof holds.
type ProofKind int

const (
	ProofUser ProofKind = iota + 1
	ProofGuest
)

// Proof is evidence of queue membership: either a registered user
// (UserID, Name) or a guest token (EntryID, Email).
type Proof struct {
	Kind    ProofKind
	UserID  string
	Name    string
	EntryID string
	Email   string
}

// Identity returns the user behind a ProofUser proof.
func (p Proof) Identity() Identity {
	return Identity{UserID: p.UserID, Name: p.Name}
}

// Resolver is the identity resolver used by every protected operation.
type Resolver struct {
	tokens *Tokens
	users  UserLookup
}

func NewResolver(tokens *Tokens, users UserLookup) *Resolver {
	return &Resolver{tokens: tokens, users: users}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", apperr.New(apperr.Unauthorized, "Missing user credentials.")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", apperr.New(apperr.Unauthorized, "Invalid authorization header.")
	}
	return strings.TrimSpace(token), nil
}

// Authenticate verifies an access token and checks that its user exists.
func (r *Resolver) Authenticate(ctx context.Context, credential string) (Identity, error) {
	proof, err := r.ResolveProof(ctx, credential)
	if err != nil {
		return Identity{}, err
	}
	if proof.Kind != ProofUser {
		return Identity{}, apperr.New(apperr.Unauthorized, "Invalid user credentials.")
	}
	return proof.Identity(), nil
}

// ResolveProof verifies credential once and returns the proof it carries.
// Access tokens are only accepted for users that still exist.
func (r *Resolver) ResolveProof(ctx context.Context, credential string) (Proof, error) {
	claims, err := r.tokens.ParseAccess(credential)
	if err != nil {
		return Proof{}, apperr.Wrap(apperr.Unauthorized, err, "Invalid user credentials.")
	}
	if claims.Kind == KindGuest {
		return Proof{Kind: ProofGuest, EntryID: claims.Subject, Email: claims.Username}, nil
	}
	ok, err := r.users.UserExists(ctx, claims.Subject, claims.Username)
	if err != nil {
		log.Error().Err(err).Str("module", "auth").Msg("failed to verify user")
		return Proof{}, apperr.Wrap(apperr.Internal, err, "An unexpected error occurred while verifying credentials.")
	}
	if !ok {
		return Proof{}, apperr.New(apperr.Unauthorized, "Invalid user credentials.")
	}
	return Proof{Kind: ProofUser, UserID: claims.Subject, Name: claims.Username}, nil
}
