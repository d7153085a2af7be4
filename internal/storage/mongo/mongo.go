package mongo

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pribylovaa/go-shift-scheduler/internal/config"
	"github.com/pribylovaa/go-shift-scheduler/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	tokensCollection = "qr_tokens"
	defaultDBName    = "scheduler"
)

// Store - тонкий адаптер над MongoDB для хранения QR-токенов.
// Поддерживает обе схемы идентичности: single_slot (один изменяемый документ
// с фиксированным _id) и append_only (новый документ на каждый выпуск).
type Store struct {
	cfg    *config.Config
	client *mongodriver.Client
	db     *mongodriver.Database
	tokens *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение и обеспечивает индексацию.
func New(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("mongo: nil config")
	}

	if cfg.DB.URL == "" {
		return nil, fmt.Errorf("mongo: empty cfg.DB.URL")
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(cfg.DB.URL))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	dbName := databaseFromURI(cfg.DB.URL)
	db := cli.Database(dbName)

	s := &Store{
		cfg:    cfg,
		client: cli,
		db:     db,
		tokens: db.Collection(tokensCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}

	return s, nil
}

// Close отключает клиент MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ensureIndexes создает индексы, необходимые токен-хранилищу:
//   - issued_at DESC — выборка «последний выпущенный» (limit 1);
//   - TTL по expires_at с лагом retention — вытесненные токены append_only
//     доживают retention после истечения (различимый TOKEN_EXPIRED для аудита),
//     затем коллекция очищается сама.
func (s *Store) ensureIndexes(ctx context.Context) error {
	retention := int32(s.cfg.Token.Retention.Seconds())

	idxs := []mongodriver.IndexModel{
		{
			Keys:    bson.D{{Key: "issued_at", Value: -1}},
			Options: options.Index().SetName("issued_at_desc"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("ttl_expires_at").SetExpireAfterSeconds(retention),
		},
	}

	_, err := s.tokens.Indexes().CreateMany(ctx, idxs)
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}

	return nil
}

// scheme возвращает настроенную схему идентичности.
func (s *Store) scheme() storage.Scheme {
	return storage.Scheme(s.cfg.Token.Scheme)
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не поддается расшифровке, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}
	return defaultDBName
}
