//go:build !cgo

package main

import (
	"fmt"

	"github.com/dusk-indust/codeatlas/internal/graph"
)

func exportKuzu(_ *graph.Graph, _ string) error {
	return fmt.Errorf("kuzu export requires a cgo-enabled build")
}
