package etl

import (
	"context"
	"fmt"

	"github.com/EMC-Underground/munger3/internal/insight"
	"github.com/EMC-Underground/munger3/internal/logger"
)

// SlotListResult describes a finished slot list run.
type SlotListResult struct {
	Customers int
	Serials   int
	Path      string
	// Written is false when the master list file could not be written.
	Written bool
}

// SlotListGenerator collects the distinct serial numbers of every customer
// in the worklist into one master list file.
type SlotListGenerator struct {
	worklist    WorklistLoader
	fetcher     DocumentFetcher
	worklistKey string
	path        string
	log         *logger.Logger

	write func(path string, m *insight.MasterList) error
}

func NewSlotListGenerator(worklist WorklistLoader, fetcher DocumentFetcher, worklistKey, path string, log *logger.Logger) *SlotListGenerator {
	if log == nil {
		log = logger.Named("sn-slot-list")
	}
	return &SlotListGenerator{
		worklist:    worklist,
		fetcher:     fetcher,
		worklistKey: worklistKey,
		path:        path,
		log:         log,
		write:       insight.WriteMasterList,
	}
}

// Run processes the whole worklist once.
//
// The first customer that fails aborts the run and nothing is written: the
// master list only reaches disk after every customer succeeded. A failed
// file write is logged and does not fail the run.
func (g *SlotListGenerator) Run(ctx context.Context) (*SlotListResult, error) {
	gduns, err := g.worklist.Load(ctx, g.worklistKey)
	if err != nil {
		return nil, fmt.Errorf("load worklist: %w", err)
	}
	g.log.Info().Int("customers", len(gduns)).Str("key", g.worklistKey).Msg("worklist loaded")

	var master insight.MasterList
	for i, id := range gduns {
		doc, err := g.fetcher.Fetch(ctx, id)
		if err != nil {
			g.log.Error().Err(err).Str("gdun", id).Int("index", i).Msg("customer failed, aborting")
			return nil, fmt.Errorf("customer %s: %w", id, err)
		}
		added := master.Add(insight.SerialNumbers(doc))
		g.log.Debug().Str("gdun", id).Int("rows", len(doc.Rows)).Int("added", added).Msg("customer processed")
	}

	res := &SlotListResult{Customers: len(gduns), Serials: master.Len(), Path: g.path}
	if err := g.write(g.path, &master); err != nil {
		g.log.Error().Err(err).Str("path", g.path).Msg("write master list")
		return res, nil
	}
	res.Written = true
	g.log.Info().Int("serials", res.Serials).Str("path", g.path).Msg("master list written")
	return res, nil
}
