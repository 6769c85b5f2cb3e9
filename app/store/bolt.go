package store

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/Semior001/aidhub/app/content"
	bolt "go.etcd.io/bbolt"
)

const (
	articlesBktName = "articles"
	chatsBktName    = "chats"
)

// Bolt is a storage that uses BoltDB as a backend. Articles are stored
// as JSON values keyed by slug, iteration follows the key order.
type Bolt struct {
	db *bolt.DB
}

// NewBolt creates new Bolt storage.
func NewBolt(dir string) (*Bolt, error) {
	db, err := bolt.Open(path.Join(dir, "aidhub.db"), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to make boltdb for %s: %w", dir, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{articlesBktName, chatsBktName} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("create top-level bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("make buckets: %w", err)
	}

	return &Bolt{db: db}, nil
}

// Put puts article to the catalog.
func (b *Bolt) Put(_ context.Context, a content.Article) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		bts, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("marshal article: %w", err)
		}

		if err := bkt.Put([]byte(a.Slug), bts); err != nil {
			return fmt.Errorf("put article to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Get returns article from the catalog by its slug.
func (b *Bolt) Get(_ context.Context, slug string) (a content.Article, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		bts := bkt.Get([]byte(slug))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &a); err != nil {
			return fmt.Errorf("unmarshal article: %w", err)
		}

		return nil
	})
	if err != nil {
		return content.Article{}, fmt.Errorf("view storage: %w", err)
	}

	return a, nil
}

// List returns catalog articles matching the request, in slug order.
func (b *Bolt) List(_ context.Context, req ListRequest) ([]content.Article, error) {
	var result []content.Article
	skipped := 0

	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var a content.Article
			if err := json.Unmarshal(v, &a); err != nil {
				return fmt.Errorf("unmarshal article %s: %w", k, err)
			}

			if !matches(a, req) {
				return nil
			}
			if skipped < req.Offset {
				skipped++
				return nil
			}
			if req.Limit > 0 && len(result) >= req.Limit {
				return nil
			}

			result = append(result, a)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return result, nil
}

func matches(a content.Article, req ListRequest) bool {
	if req.Category != "" && content.GuessCategory(a) != req.Category {
		return false
	}
	if req.Query != "" {
		q := strings.ToLower(req.Query)
		haystack := strings.ToLower(a.Title + " " + strings.Join(a.Keywords, " ") + " " + a.Body)
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

// Delete removes article from the catalog.
func (b *Bolt) Delete(_ context.Context, slug string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(articlesBktName))

		if err := bkt.Delete([]byte(slug)); err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Index rebuilds the catalog from a resolved corpus: the articles
// bucket is dropped and refilled.
func (b *Bolt) Index(_ context.Context, corpus content.Corpus) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(articlesBktName)); err != nil {
			return fmt.Errorf("drop bucket: %w", err)
		}

		bkt, err := tx.CreateBucket([]byte(articlesBktName))
		if err != nil {
			return fmt.Errorf("recreate bucket: %w", err)
		}

		for _, a := range corpus.Articles {
			bts, err := json.Marshal(a)
			if err != nil {
				return fmt.Errorf("marshal article %s: %w", a.Slug, err)
			}
			if err := bkt.Put([]byte(a.Slug), bts); err != nil {
				return fmt.Errorf("put article %s: %w", a.Slug, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}
	return nil
}

// Size returns the number of articles in the catalog.
func (b *Bolt) Size(_ context.Context) (int, error) {
	var size int
	err := b.db.View(func(tx *bolt.Tx) error {
		size = tx.Bucket([]byte(articlesBktName)).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("view storage: %w", err)
	}
	return size, nil
}

// PutChat puts chat to storage.
func (b *Bolt) PutChat(_ context.Context, c Chat) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(chatsBktName))

		bts, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal chat: %w", err)
		}

		if err := bkt.Put([]byte(c.ChatID), bts); err != nil {
			return fmt.Errorf("put chat to storage: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// GetChat returns chat from storage.
func (b *Bolt) GetChat(_ context.Context, id string) (c Chat, err error) {
	err = b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(chatsBktName))

		bts := bkt.Get([]byte(id))
		if bts == nil {
			return ErrNotFound
		}

		if err := json.Unmarshal(bts, &c); err != nil {
			return fmt.Errorf("unmarshal chat: %w", err)
		}

		return nil
	})
	if err != nil {
		return Chat{}, fmt.Errorf("view storage: %w", err)
	}

	return c, nil
}

// ListChats returns all chats from storage.
func (b *Bolt) ListChats(context.Context) ([]Chat, error) {
	var result []Chat
	err := b.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(chatsBktName))
		err := bkt.ForEach(func(k, v []byte) error {
			var c Chat
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("unmarshal chat %s: %w", k, err)
			}
			result = append(result, c)
			return nil
		})
		if err != nil {
			return fmt.Errorf("foreach: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("view storage: %w", err)
	}
	return result, nil
}

// DeleteChat removes chat from storage.
func (b *Bolt) DeleteChat(_ context.Context, id string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(chatsBktName))

		if err := bkt.Delete([]byte(id)); err != nil {
			return fmt.Errorf("remove: %w", err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("update storage: %w", err)
	}

	return nil
}

// Close closes the storage.
func (b *Bolt) Close() error { return b.db.Close() }
