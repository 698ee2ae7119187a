package audio

import "sync"

// GridPos is a position on the game's tile grid. X grows east, Y grows
// south, matching how levels are drawn.
type GridPos struct {
	X, Y int
}

// Grid tiles map onto world units with a fixed linear transform: tile (2,2)
// is the world origin and adjacent tiles sit two units apart. Spatial math
// happens in world units so attenuation distances stay independent of grid
// dimensions.
const (
	worldCellSize   = 2.0
	worldGridCenter = 2
)

// worldPos is a point in listener space. X is lateral, Z is depth; there is
// no vertical axis on a flat tile grid.
type worldPos struct {
	X, Z float64
}

func toWorld(p GridPos) worldPos {
	return worldPos{
		X: float64(p.X-worldGridCenter) * worldCellSize,
		Z: float64(p.Y-worldGridCenter) * worldCellSize,
	}
}

// listener tracks where the player's ears are in world space.
type listener struct {
	mu  sync.RWMutex
	pos worldPos
}

func newListener() *listener {
	return &listener{pos: toWorld(GridPos{X: worldGridCenter, Y: worldGridCenter})}
}

func (l *listener) set(p GridPos) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pos = toWorld(p)
}

func (l *listener) world() worldPos {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pos
}
