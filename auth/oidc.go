package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/tcriess/lightspeed-rooms/config"
	"github.com/tcriess/lightspeed-rooms/globals"
)

// Authenticate verifies a given OIDC ID-Token using the configured OIDC provider.
// It returns the (lower-cased) "email" claim of the token, which identifies the account.
func Authenticate(ctx context.Context, idToken, oidcProvider string, cfg *config.Config) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("no id token")
	}
	oidcConf := cfg.OIDCConfig(oidcProvider)
	if oidcConf == nil {
		globals.AppLogger.Debug("no oidc config found for provider", "provider", oidcProvider)
		return "", fmt.Errorf("unknown oidc provider %q", oidcProvider)
	}
	provider, err := oidc.NewProvider(ctx, oidcConf.ProviderUrl)
	if err != nil {
		return "", err
	}
	conf := oidc.Config{}
	if oidcConf.ClientId == "" {
		conf.SkipClientIDCheck = true
	} else {
		conf.ClientID = oidcConf.ClientId
	}
	verifiedIdToken, err := provider.Verifier(&conf).Verify(ctx, idToken)
	if err != nil {
		globals.AppLogger.Info("could not verify id token", "provider", oidcProvider, "error", err)
		return "", err
	}

	claims := struct {
		Email string `json:"email"`
	}{}
	err = verifiedIdToken.Claims(&claims)
	if err != nil {
		return "", err
	}
	if claims.Email == "" {
		return "", fmt.Errorf("empty e-mail address")
	}
	return strings.ToLower(claims.Email), nil
}
