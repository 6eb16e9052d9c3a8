package keystore

import (
	"context"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	gax "github.com/googleapis/gax-go/v2"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// SecretAccessor reads the payload of a secret version.
type SecretAccessor interface {
	AccessSecret(ctx context.Context, name string) ([]byte, error)
}

// VersionClient is the part of the Secret Manager client used here.
// Satisfied by *secretmanager.Client.
type VersionClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

// SecretManager reads payer keypairs from GCP Secret Manager.
type SecretManager struct {
	client VersionClient
	close  func() error
}

// NewSecretManager dials Secret Manager with application default credentials.
func NewSecretManager(ctx context.Context) (*SecretManager, error) {
	c, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, dropperr.WithCause(dropperr.ErrNetworkError, err)
	}
	return &SecretManager{client: c, close: c.Close}, nil
}

// NewSecretManagerWithClient wraps an existing client.
func NewSecretManagerWithClient(client VersionClient) *SecretManager {
	return &SecretManager{client: client}
}

// AccessSecret returns the payload of the secret version name.
func (s *SecretManager) AccessSecret(ctx context.Context, name string) ([]byte, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, dropperr.WithDetails(dropperr.WithCause(dropperr.ErrNotFound, err), map[string]string{"secret": name})
	}

	data := res.GetPayload().GetData()
	if len(data) == 0 {
		return nil, dropperr.WithDetails(dropperr.ErrNotFound, map[string]string{"secret": name, "payload": "empty"})
	}
	return data, nil
}

// Close releases the underlying connection.
func (s *SecretManager) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// SecretVersionName normalizes a secret reference to a version resource
// name. "projects/p/secrets/s" resolves to its latest version.
func SecretVersionName(ref string) (string, error) {
	ref = strings.Trim(strings.TrimSpace(ref), "/")
	parts := strings.Split(ref, "/")

	switch {
	case len(parts) == 4 && parts[0] == "projects" && parts[2] == "secrets" && parts[1] != "" && parts[3] != "":
		return ref + "/versions/latest", nil
	case len(parts) == 6 && parts[0] == "projects" && parts[2] == "secrets" && parts[4] == "versions" &&
		parts[1] != "" && parts[3] != "" && parts[5] != "":
		return ref, nil
	default:
		return "", dropperr.WithSuggestion(
			dropperr.WithDetails(dropperr.ErrInvalidInput, map[string]string{"secret": ref}),
			"Use secretmanager://projects/<project>/secrets/<secret>[/versions/<version>]",
		)
	}
}
