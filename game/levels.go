package game

import "github.com/fernweh-games/whisperwood/audio"

// Tile kinds, drawn straight from the level maps.
const (
	TileFloor = '.'
	TileWall  = '#'
	TileItem  = '*'
	TileExit  = '>'
	TileStart = '@'
)

// Level is one explorable area. Maps are small fixed grids; row zero is the
// north edge.
type Level struct {
	Name        string
	Description string

	// Ambience is the looping bed started on entry, empty for silence.
	Ambience string

	// Terrain picks the footstep sound.
	Terrain string

	// Next is the level reached through the exit tile.
	Next string

	// Items by position, consumed on pickup.
	Items map[audio.GridPos]Item

	rows []string
}

// Item is something the player can walk over and collect.
type Item struct {
	Name  string
	Sound string
}

// Width and Height of the tile grid.
func (l *Level) Width() int  { return len(l.rows[0]) }
func (l *Level) Height() int { return len(l.rows) }

// Tile returns the tile at p, or a wall when p is out of bounds.
func (l *Level) Tile(p audio.GridPos) byte {
	if p.Y < 0 || p.Y >= len(l.rows) || p.X < 0 || p.X >= len(l.rows[p.Y]) {
		return TileWall
	}
	return l.rows[p.Y][p.X]
}

// Start is the player's spawn tile.
func (l *Level) Start() audio.GridPos {
	for y, row := range l.rows {
		for x := 0; x < len(row); x++ {
			if row[x] == TileStart {
				return audio.GridPos{X: x, Y: y}
			}
		}
	}
	return audio.GridPos{X: 2, Y: 2}
}

// footstepSound maps terrain to a sound id.
func (l *Level) footstepSound() string {
	switch l.Terrain {
	case "stone":
		return "footstep_stone"
	case "sand":
		return "footstep_sand"
	default:
		return "footstep_grass"
	}
}

// levels is the little world of Whisperwood. Level names double as acoustic
// environment keys.
var levels = map[string]*Level{
	"Meadow Path": {
		Name:        "Meadow Path",
		Description: "A sunlit meadow. Tall grass whispers around a worn dirt path leading east.",
		Ambience:    "meadow_ambience",
		Terrain:     "grass",
		Next:        "Whispering Forest",
		Items: map[audio.GridPos]Item{
			{X: 3, Y: 1}: {Name: "a brass key", Sound: "item_pickup"},
		},
		rows: []string{
			"#####",
			"#..*#",
			"#@..>",
			"#...#",
			"#####",
		},
	},
	"Whispering Forest": {
		Name:        "Whispering Forest",
		Description: "Ancient trees close overhead. Somewhere above, an owl calls.",
		Ambience:    "forest_ambience",
		Terrain:     "grass",
		Next:        "Ocean Shore",
		Items: map[audio.GridPos]Item{
			{X: 1, Y: 3}: {Name: "a silver feather", Sound: "item_pickup"},
		},
		rows: []string{
			"#####",
			"#.#.#",
			"#@..>",
			"#*#.#",
			"#####",
		},
	},
	"Ocean Shore": {
		Name:        "Ocean Shore",
		Description: "Waves roll against the sand. The air tastes of salt.",
		Ambience:    "ocean_waves",
		Terrain:     "sand",
		Next:        "Crystal Caverns",
		Items: map[audio.GridPos]Item{
			{X: 3, Y: 3}: {Name: "a glimmering shell", Sound: "item_pickup"},
		},
		rows: []string{
			"#####",
			"#...#",
			"#@..>",
			"#..*#",
			"#####",
		},
	},
	"Crystal Caverns": {
		Name:        "Crystal Caverns",
		Description: "Crystals hum faintly in the dark. Water drips somewhere far below.",
		Ambience:    "cave_drips",
		Terrain:     "stone",
		Next:        "Old Keep",
		Items: map[audio.GridPos]Item{
			{X: 2, Y: 1}: {Name: "a glowing crystal", Sound: "crystal_ring"},
		},
		rows: []string{
			"#####",
			"#.*.#",
			"#@..>",
			"#...#",
			"#####",
		},
	},
	"Old Keep": {
		Name:        "Old Keep",
		Description: "Cold stone halls. Wind moans through arrow slits high above.",
		Ambience:    "wind_loop",
		Terrain:     "stone",
		Next:        "",
		Items: map[audio.GridPos]Item{
			{X: 3, Y: 2}: {Name: "the Whisperwood crown", Sound: "magic_chime"},
		},
		rows: []string{
			"#####",
			"#...#",
			"#@.*#",
			"#...#",
			"#####",
		},
	},
}

// FirstLevel is where a new game begins.
const FirstLevel = "Meadow Path"

// LevelByName fetches a level; ok is false for unknown names.
func LevelByName(name string) (*Level, bool) {
	l, ok := levels[name]
	return l, ok
}
