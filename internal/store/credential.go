package store

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ewhitfield/stockdeck-backend/internal/errs"
	"github.com/ewhitfield/stockdeck-backend/internal/models"
)

type credentialStore struct {
	client *firestore.Client
}

func NewCredentialStore(client *firestore.Client) *credentialStore {
	return &credentialStore{client: client}
}

func (s *credentialStore) collection(uid string) *firestore.CollectionRef {
	return s.client.Collection("users").Doc(uid).Collection("apiKeys")
}

func (s *credentialStore) Create(ctx context.Context, uid string, c *models.Credential) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.collection(uid).Doc(c.ID).Create(ctx, c)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errs.NewAlreadyExistsError("credential already exists")
		}
		return errs.NewDatabaseError("create", "failed to create credential", err)
	}
	return nil
}

func (s *credentialStore) Get(ctx context.Context, uid, id string) (*models.Credential, error) {
	doc, err := s.collection(uid).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errs.NewNotFoundError("credential not found")
		}
		return nil, errs.NewDatabaseError("read", "failed to get credential", err)
	}
	var c models.Credential
	if err := doc.DataTo(&c); err != nil {
		return nil, errs.NewDatabaseError("read", "failed to parse credential data", err)
	}
	return &c, nil
}

func (s *credentialStore) List(ctx context.Context, uid string) ([]*models.Credential, error) {
	docs, err := s.collection(uid).OrderBy("createdAt", firestore.Asc).Documents(ctx).GetAll()
	if err != nil {
		return nil, errs.NewDatabaseError("read", "failed to list credentials", err)
	}
	creds := make([]*models.Credential, 0, len(docs))
	for _, d := range docs {
		var c models.Credential
		if err := d.DataTo(&c); err != nil {
			return nil, errs.NewDatabaseError("read", "failed to parse credential data", err)
		}
		creds = append(creds, &c)
	}
	return creds, nil
}

func (s *credentialStore) Delete(ctx context.Context, uid, id string) error {
	_, err := s.collection(uid).Doc(id).Delete(ctx)
	if err != nil {
		return errs.NewDatabaseError("delete", "failed to delete credential", err)
	}
	return nil
}
