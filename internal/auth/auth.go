// Package auth turns mirror credentials from the configuration into go-git
// transport authentication.
package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/charmrelease/internal/config"
)

// CreateAuth returns the AuthMethod for authCfg, or nil when no
// authentication is configured.
func CreateAuth(authCfg *config.AuthConfig) (transport.AuthMethod, error) {
	if authCfg.IsZero() {
		return nil, nil
	}

	switch authCfg.Type {
	case config.AuthTypeSSH:
		keyPath := authCfg.KeyPath
		if keyPath == "" {
			keyPath = filepath.Join(os.Getenv("HOME"), ".ssh", "id_rsa")
		}
		publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
		if err != nil {
			return nil, fmt.Errorf("failed to load SSH key from %s: %w", keyPath, err)
		}
		return publicKeys, nil
	case config.AuthTypeToken:
		if authCfg.Token == "" {
			return nil, fmt.Errorf("token authentication requires a token")
		}
		// Most Git hosting services accept "token" as the username.
		return &http.BasicAuth{Username: "token", Password: authCfg.Token}, nil
	case config.AuthTypeBasic:
		if authCfg.Username == "" || authCfg.Password == "" {
			return nil, fmt.Errorf("basic authentication requires username and password")
		}
		return &http.BasicAuth{Username: authCfg.Username, Password: authCfg.Password}, nil
	default:
		return nil, fmt.Errorf("unsupported authentication type: %s", authCfg.Type)
	}
}
