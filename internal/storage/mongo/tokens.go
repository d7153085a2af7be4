package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pribylovaa/go-shift-scheduler/internal/models"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// tokenDoc — схема документа токена в коллекции qr_tokens.
// При single_slot _id фиксирован (cfg.Token.SlotID), при append_only —
// ObjectID, сгенерированный драйвером.
type tokenDoc struct {
	ID        any       `bson:"_id,omitempty"`
	Value     string    `bson:"value"`
	IssuedAt  time.Time `bson:"issued_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// toMS нормализует время до миллисекунд: MongoDB DateTime хранит миллисекунды,
// и обрезка на записи гарантирует бит-точный round-trip временных меток.
func toMS(t time.Time) time.Time { return t.UTC().Truncate(time.Millisecond) }

// SaveToken персистит токен по схеме create-or-replace.
//   - single_slot: ReplaceOne c upsert по фиксированному _id — прежний токен
//     остаётся действующим до коммита замены;
//   - append_only: InsertOne — прежние выпуски не трогаем вовсе.
func (s *Store) SaveToken(ctx context.Context, token models.Token) error {
	const op = "storage/mongo/SaveToken"

	doc := tokenDoc{
		Value:     token.Value,
		IssuedAt:  toMS(token.IssuedAt),
		ExpiresAt: toMS(token.ExpiresAt),
	}

	switch s.scheme() {
	case storage.SchemeSingleSlot:
		doc.ID = s.cfg.Token.SlotID
		_, err := s.tokens.ReplaceOne(ctx,
			bson.D{{Key: "_id", Value: s.cfg.Token.SlotID}},
			doc,
			options.Replace().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("%s: replace: %w", op, err)
		}

	default: // append_only
		if _, err := s.tokens.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("%s: insert: %w", op, err)
		}
	}

	return nil
}

// LatestToken возвращает последний выпущенный токен (issued_at DESC, limit 1).
// Пустая коллекция — storage.ErrNoToken; документ без value —
// storage.ErrMalformedToken.
func (s *Store) LatestToken(ctx context.Context) (*models.Token, error) {
	const op = "storage/mongo/LatestToken"

	var filter bson.D
	findOpts := options.FindOne().SetSort(bson.D{{Key: "issued_at", Value: -1}})

	if s.scheme() == storage.SchemeSingleSlot {
		filter = bson.D{{Key: "_id", Value: s.cfg.Token.SlotID}}
	} else {
		filter = bson.D{}
	}

	var doc tokenDoc
	if err := s.tokens.FindOne(ctx, filter, findOpts).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNoToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if strings.TrimSpace(doc.Value) == "" {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrMalformedToken)
	}

	return &models.Token{
		Value:     doc.Value,
		IssuedAt:  doc.IssuedAt.UTC(),
		ExpiresAt: doc.ExpiresAt.UTC(),
	}, nil
}
