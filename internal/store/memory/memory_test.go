package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"plenio/internal/core"
	"plenio/internal/store"
	"plenio/internal/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) *store.Store { return New() })
}

func TestMemoryStoredDocuments(t *testing.T) {
	storetest.RunStoredDocuments(t, func(t *testing.T) (*store.Store, storetest.Seed) {
		s := New()
		seed := func(_ context.Context, collection, id string, doc map[string]any) error {
			raw, err := json.Marshal(doc)
			if err != nil {
				return err
			}
			switch collection {
			case store.CollectionPaymentMethods:
				seedRaw(s.PaymentMethods.(*Collection[core.PaymentMethod]), id, raw)
			case store.CollectionUsers:
				seedRaw(s.Users.(*Collection[core.UserProfile]), id, raw)
			default:
				return fmt.Errorf("no seed for %s", collection)
			}
			return nil
		}
		return s, seed
	})
}

func seedRaw[T any](c *Collection[T], id string, raw []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
}
