package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oxhq/stottr/internal/catalog"
	"github.com/oxhq/stottr/internal/config"
	"github.com/oxhq/stottr/internal/driver"
	"github.com/oxhq/stottr/internal/store"
	"github.com/oxhq/stottr/internal/template"
	"github.com/oxhq/stottr/internal/validate"
)

// built bundles the store and template dataset produced by expandInput, for
// subcommands that query or export immediately afterward in the same run.
type built struct {
	store    *store.Store
	dataset  template.Dataset
	tmplName string
	callUUID string
}

// expandInput loads f.csvPath, synthesizes a default template over it, and
// runs the driver to populate a store.
func expandInput(f *inputFlags) (*built, error) {
	if f.csvPath == "" {
		return nil, fmt.Errorf("--csv is required")
	}
	cfg := f.resolve()
	log := newLogger(cfg)

	batch, err := loadCSVTable(f.csvPath)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.NewDefaultTemplate(batch.Names(), f.pkColumn, f.fkColumns, template.DefaultTemplateOptions{
		TemplatePrefix:     cfg.DefaultTemplatePrefix,
		PredicatePrefixIRI: cfg.DefaultPredicatePrefixIRI,
	})
	if err != nil {
		return nil, fmt.Errorf("build default template: %w", err)
	}
	dataset := template.Dataset{Templates: []template.Template{tmpl}}

	iriCols := map[string]bool{f.pkColumn: true}
	for _, c := range f.fkColumns {
		iriCols[c] = true
	}
	for _, c := range f.iriColumns {
		iriCols[c] = true
	}

	var cat *catalog.Catalog
	if cfg.CatalogDSN != "" {
		cat, err = catalog.Connect(cfg.CatalogDSN, false)
		if err != nil {
			log.WithError(err).Warn("ottrctl: catalog unavailable, continuing without it")
			cat = nil
		}
	}

	st := store.NewStore(cfg.SpillFolder, cfg.Workers, log)
	d := driver.New(st, cat, cfg.Workers, log)

	callUUID, err := d.Run(context.Background(), dataset, tmpl.Signature.TemplateName, batch, validate.Options{IRIColumns: iriCols})
	if err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	log.WithFields(logrus.Fields{"call_uuid": callUUID, "rows": batch.Height()}).Info("ottrctl: expansion complete")

	return &built{store: st, dataset: dataset, tmplName: tmpl.Signature.TemplateName, callUUID: callUUID}, nil
}
