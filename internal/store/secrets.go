package store

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ewhitfield/stockdeck-backend/internal/errs"
)

// Secrets path
// projects/{project}/secrets/provider-api-key-{uid}-{credentialID}/versions/latest

type secretsStore struct {
	client    *secretmanager.Client
	projectID string
	prefix    string
}

// NewSecretsStore is the Secret Manager backend for credential secrets,
// used when SECRETBACKEND=secretmanager. The Firestore credential document
// then stores no ciphertext at all.
func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{
		client:    client,
		projectID: projectID,
		prefix:    "provider-api-key",
	}
}

func (s *secretsStore) secretID(uid, credentialID string) string {
	return fmt.Sprintf("%s-%s-%s", s.prefix, uid, credentialID)
}

func (s *secretsStore) secretName(uid, credentialID string) string {
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, s.secretID(uid, credentialID))
}

func (s *secretsStore) ensureSecret(ctx context.Context, uid, credentialID string) error {
	name := s.secretName(uid, credentialID)
	_, err := s.client.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{Name: name})
	if status.Code(err) == codes.NotFound {
		_, err = s.client.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   fmt.Sprintf("projects/%s", s.projectID),
			SecretId: s.secretID(uid, credentialID),
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{Automatic: &secretmanagerpb.Replication_Automatic{}},
				},
			},
		})
	}
	return err
}

func (s *secretsStore) Store(ctx context.Context, uid, credentialID, secret string) error {
	if err := s.ensureSecret(ctx, uid, credentialID); err != nil {
		return errs.NewDatabaseError("create", "failed to create secret", err)
	}
	_, err := s.client.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: s.secretName(uid, credentialID),
		Payload: &secretmanagerpb.SecretPayload{
			Data: []byte(secret),
		},
	})
	if err != nil {
		return errs.NewDatabaseError("create", "failed to add secret version", err)
	}
	return nil
}

func (s *secretsStore) Get(ctx context.Context, uid, credentialID string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName(uid, credentialID)),
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", errs.NewNotFoundError("secret not found")
		}
		return "", errs.NewDatabaseError("read", "failed to access secret", err)
	}
	return string(res.Payload.Data), nil
}

func (s *secretsStore) Delete(ctx context.Context, uid, credentialID string) error {
	err := s.client.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: s.secretName(uid, credentialID),
	})
	if err != nil && status.Code(err) != codes.NotFound {
		return errs.NewDatabaseError("delete", "failed to delete secret", err)
	}
	return nil
}
