package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/sankey"
	"github.com/meikuraledutech/sankey/postgres"
	"github.com/meikuraledutech/sankey/render"
)

const owner = "example-user"

func main() {
	ctx := context.Background()
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05.00"})

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("connect", "err", err)
	}
	defer pool.Close()

	// Wire up the postgres implementation behind the Store interface.
	var store sankey.Store = postgres.New(pool)

	if err := store.CreateSchema(ctx); err != nil {
		logger.Fatal("schema", "err", err)
	}
	logger.Info("schema created")

	// ── Build a diagram through the editor ────────────────────────────
	ed := sankey.NewEditor()
	ed.SetName("Household Energy")
	for pos, name := range []string{"Grid", "House"} {
		if _, err := ed.RenameNode(pos, name); err != nil {
			logger.Fatal("rename node", "pos", pos, "err", err)
		}
	}
	if _, err := ed.EditLinkValue(0, 12); err != nil {
		logger.Fatal("edit link value", "err", err)
	}
	ed.AddNode("Heating")
	ed.AddNode("Appliances")
	ed.AddNode("Solar")
	mustLink(logger, ed, 1, 2, 7)
	mustLink(logger, ed, 1, 3, 8)
	mustLink(logger, ed, 4, 1, 3)

	// Heating -> Grid would close Grid -> House -> Heating -> Grid.
	if _, err := ed.AddLink(2, 0, 1); errors.Is(err, sankey.ErrCycleRejected) {
		logger.Info("rejected link", "err", err)
	}

	nodes, links, err := ed.RemoveNode(3)
	if err != nil {
		logger.Fatal("remove node", "err", err)
	}
	logger.Info("removed Appliances", "nodes", nodes, "links", links)

	// ── Save and reload ───────────────────────────────────────────────
	d := ed.Diagram()
	saved, err := store.SaveDiagram(ctx, owner, &d)
	if err != nil {
		logger.Fatal("save", "err", err)
	}
	logger.Info("diagram saved", "id", saved.ID, "nodes", len(saved.Nodes), "links", len(saved.Links))

	loaded, err := store.GetDiagram(ctx, owner, saved.ID)
	if err != nil {
		logger.Fatal("load", "err", err)
	}
	reopened, err := sankey.Open(&loaded.Diagram)
	if err != nil {
		logger.Fatal("open", "err", err)
	}
	logger.Info("diagram reopened", "name", reopened.Name(), "nodes", reopened.Nodes())

	// ── Export ────────────────────────────────────────────────────────
	layout, err := render.Compute(reopened.Diagram(), render.Options{Title: reopened.Name()})
	if err != nil {
		logger.Fatal("layout", "err", err)
	}
	name := render.Filename(reopened.Name(), "svg")
	f, err := os.Create(name)
	if err != nil {
		logger.Fatal("create export", "err", err)
	}
	defer f.Close()
	if err := render.WriteSVG(f, layout); err != nil {
		logger.Fatal("export", "err", err)
	}
	logger.Info("exported", "file", name)

	// ── Cleanup ───────────────────────────────────────────────────────
	if err := store.DeleteDiagram(ctx, owner, saved.ID); err != nil {
		logger.Fatal("delete", "err", err)
	}
	logger.Info("diagram deleted")
}

func mustLink(logger *log.Logger, ed *sankey.Editor, source, target int, value float64) {
	if _, err := ed.AddLink(source, target, value); err != nil {
		logger.Fatal("add link", "source", source, "target", target, "err", err)
	}
}
