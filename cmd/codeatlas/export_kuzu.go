//go:build cgo

package main

import (
	"github.com/dusk-indust/codeatlas/internal/export"
	"github.com/dusk-indust/codeatlas/internal/graph"
)

func exportKuzu(g *graph.Graph, dbPath string) error {
	mirror, err := export.NewKuzuMirror(dbPath)
	if err != nil {
		return err
	}
	defer mirror.Close()
	return mirror.Mirror(g)
}
