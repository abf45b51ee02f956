package pipeline

import (
	"github.com/ppiankov/casefile/internal/checkpoint"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
)

// Collect loads every checkpointed session for export without a backend.
// Sessions follow episode order; checkpoints whose episode has dropped out
// of the list come last, sorted by id. Instances are renumbered from 1.
func Collect(store *checkpoint.Store, episodes []model.Episode, log *logger.Logger) ([]model.Record, error) {
	if log == nil {
		log = logger.Discard()
	}
	ids, err := store.IDs()
	if err != nil {
		return nil, err
	}
	pending := make(map[string]bool, len(ids))
	for _, id := range ids {
		pending[id] = true
	}

	order := make([]string, 0, len(ids))
	for _, ep := range episodes {
		if pending[ep.ID] {
			order = append(order, ep.ID)
			delete(pending, ep.ID)
		}
	}
	for _, id := range ids {
		if pending[id] {
			order = append(order, id)
		}
	}

	var all []model.Record
	instance := 0
	for _, id := range order {
		records, err := store.Load(id)
		if err != nil {
			log.WithError(err).WithField("session", id).Warn("checkpoint unreadable, left out of export")
			continue
		}
		number(records, &instance)
		all = append(all, records...)
	}
	return all, nil
}
