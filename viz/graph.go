package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/insuretrack/models"
)

// PolicySource is anything that can hand out the current policy collection.
type PolicySource interface {
	Policies() []models.Policy
}

type GraphGenerator struct {
	source PolicySource
}

func NewGraphGenerator(source PolicySource) *GraphGenerator {
	return &GraphGenerator{source: source}
}

// categoryColors keeps node colours stable across renders.
var categoryColors = map[models.Category]string{
	models.CategoryLife:    "lightblue",
	models.CategoryTerm:    "lightcyan",
	models.CategoryCar:     "lightyellow",
	models.CategoryBike:    "lightpink",
	models.CategoryMedical: "lightgreen",
}

// render builds a graph with fn and returns its xdot source.
func render(ctx context.Context, label string, fn func(*cgraph.Graph) error) (string, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() {
		if err := gv.Close(); err != nil {
			log.Warn("closing graphviz", "err", err)
		}
	}()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() {
		if err := graph.Close(); err != nil {
			log.Warn("closing graph", "err", err)
		}
	}()

	graph.SetLabel(label)
	graph.SetRankDir(cgraph.LRRank)

	if err := fn(graph); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}

func categoryNode(graph *cgraph.Graph, c models.Category) (*cgraph.Node, error) {
	node, err := graph.CreateNodeByName("category_" + string(c))
	if err != nil {
		return nil, fmt.Errorf("failed to create category node: %w", err)
	}
	node.SetLabel(c.Label())
	node.SetShape("box")
	node.SetStyle("filled")
	color, ok := categoryColors[c]
	if !ok {
		color = "lightgray"
	}
	node.SetFillColor(color)
	return node, nil
}
