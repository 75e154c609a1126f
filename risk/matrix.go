package risk

import (
	"fmt"
	"math"
)

// HitRadius is the maximum distance, in pixels, at which a probe selects
// a plotted point.
const HitRadius = 15.0

const gridSize = 3

// Colour names the fill of a matrix cell.
type Colour string

const (
	Green  Colour = "green"
	Yellow Colour = "yellow"
	Orange Colour = "orange"
	Red    Colour = "red"
)

var severityColour = map[Severity]Colour{
	SeverityLow:      Green,
	SeverityMedium:   Yellow,
	SeverityHigh:     Orange,
	SeverityCritical: Red,
}

// Matrix lays a 3x3 grid over a Width x Height canvas.
type Matrix struct {
	Width  float64
	Height float64
}

// NewMatrix validates the canvas size.
func NewMatrix(width, height float64) (Matrix, error) {
	if width <= 0 || height <= 0 {
		return Matrix{}, fmt.Errorf("matrix size must be positive, got %vx%v", width, height)
	}
	return Matrix{Width: width, Height: height}, nil
}

func (m Matrix) CellWidth() float64  { return m.Width / gridSize }
func (m Matrix) CellHeight() float64 { return m.Height / gridSize }

// Cell is one square of the grid.
type Cell struct {
	Row         int      `json:"row"`
	Col         int      `json:"col"`
	Probability Level    `json:"probability"`
	Impact      Level    `json:"impact"`
	Score       int      `json:"score"`
	Severity    Severity `json:"severity"`
	Colour      Colour   `json:"colour"`
	X           float64  `json:"x"` // top-left corner
	Y           float64  `json:"y"`
	Width       float64  `json:"width"`
	Height      float64  `json:"height"`
}

// Cells returns the nine cells row by row, starting at the top-left
// (low impact, low probability). Impact grows down the canvas.
func (m Matrix) Cells() []Cell {
	cw, ch := m.CellWidth(), m.CellHeight()
	cells := make([]Cell, 0, gridSize*gridSize)
	for row := 0; row < gridSize; row++ {
		impact := Levels[row]
		for col := 0; col < gridSize; col++ {
			prob := Levels[col]
			score := Score(prob, impact)
			sev := SeverityOf(score)
			cells = append(cells, Cell{
				Row:         row,
				Col:         col,
				Probability: prob,
				Impact:      impact,
				Score:       score,
				Severity:    sev,
				Colour:      severityColour[sev],
				X:           float64(col) * cw,
				Y:           float64(row) * ch,
				Width:       cw,
				Height:      ch,
			})
		}
	}
	return cells
}

// Point is a plotted cell centre and the risks that fall into it.
type Point struct {
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Row     int      `json:"row"`
	Col     int      `json:"col"`
	RiskIDs []string `json:"risk_ids"`
}

// cellOf returns the grid position of a risk: the row is the impact
// index and the column the probability index.
func cellOf(r Risk) (row, col int) {
	return r.Impact.Index(), r.Probability.Index()
}

// Plot places every risk at the centre of its cell:
//
//	x = (probability_index + 0.5) * cellWidth
//	y = (impact_index + 0.5) * cellHeight
//
// Risks in the same cell share one point. Risks with unknown levels are
// skipped. Points are returned in row-major order.
func (m Matrix) Plot(risks []Risk) []Point {
	var grid [gridSize][gridSize]*Point
	cw, ch := m.CellWidth(), m.CellHeight()
	for _, r := range risks {
		if r.Score() == 0 {
			continue
		}
		row, col := cellOf(r)
		p := grid[row][col]
		if p == nil {
			p = &Point{
				X:   (float64(col) + 0.5) * cw,
				Y:   (float64(row) + 0.5) * ch,
				Row: row,
				Col: col,
			}
			grid[row][col] = p
		}
		p.RiskIDs = append(p.RiskIDs, r.ID)
	}

	var points []Point
	for row := range grid {
		for col := range grid[row] {
			if grid[row][col] != nil {
				points = append(points, *grid[row][col])
			}
		}
	}
	return points
}

// HitTest returns the point nearest to (x, y) when it lies strictly
// within HitRadius. The first of equally near points wins.
func HitTest(points []Point, x, y float64) (Point, bool) {
	best, bestDist := -1, math.Inf(1)
	for i, p := range points {
		d := math.Hypot(p.X-x, p.Y-y)
		if d < HitRadius && d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Point{}, false
	}
	return points[best], true
}
