package rugby

import (
	"fmt"
	"strconv"
)

// Position bounds. Positions 1-8 are forwards, 9-15 are backs.
const (
	MinPosition         = 1
	MaxPosition         = 15
	LastForwardPosition = 8
)

// ValidPosition reports whether p is a shirt position between 1 and 15.
func ValidPosition(p int) bool {
	return p >= MinPosition && p <= MaxPosition
}

var positionNames = map[int]string{
	1:  "Pilar Izq.",
	2:  "Hooker",
	3:  "Pilar Der.",
	4:  "2da Linea",
	5:  "2da Linea",
	6:  "Ala",
	7:  "Ala",
	8:  "N°8",
	9:  "Medio Scrum",
	10: "Apertura",
	11: "Wing",
	12: "Centro",
	13: "Centro",
	14: "Wing",
	15: "Fullback",
}

// PositionName returns the short name of a position, or "Desconocido".
func PositionName(p int) string {
	if name, ok := positionNames[p]; ok {
		return name
	}
	return "Desconocido"
}

// PositionLabel returns a label such as "9 - Medio Scrum".
func PositionLabel(p int) string {
	return strconv.Itoa(p) + " - " + PositionName(p)
}

// PositionClass splits positions into forwards and backs.
type PositionClass string

const (
	// AnyClass matches every position.
	AnyClass PositionClass = ""
	// Forwards are positions 1-8.
	Forwards PositionClass = "forwards"
	// Backs are positions 9-15.
	Backs PositionClass = "backs"
)

// ParsePositionClass accepts "forwards", "backs" or "" (no filter).
func ParsePositionClass(s string) (PositionClass, error) {
	switch PositionClass(s) {
	case AnyClass, Forwards, Backs:
		return PositionClass(s), nil
	default:
		return AnyClass, fmt.Errorf("invalid position class %q (want forwards or backs)", s)
	}
}

// ClassOf returns the class of a valid position.
func ClassOf(p int) PositionClass {
	if p >= MinPosition && p <= LastForwardPosition {
		return Forwards
	}
	return Backs
}

// Contains reports whether position p belongs to the class.
func (c PositionClass) Contains(p int) bool {
	switch c {
	case Forwards:
		return p >= MinPosition && p <= LastForwardPosition
	case Backs:
		return p > LastForwardPosition && p <= MaxPosition
	default:
		return true
	}
}

// Positions returns the positions of the class in ascending order.
func (c PositionClass) Positions() []int {
	var out []int
	for p := MinPosition; p <= MaxPosition; p++ {
		if c.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// PositionGroup is a set of positions that share a role on the field.
type PositionGroup struct {
	Key             string
	Label           string
	Positions       []int
	RoleDescription string
}

// Contains reports whether the group includes position p.
func (g PositionGroup) Contains(p int) bool {
	for _, gp := range g.Positions {
		if gp == p {
			return true
		}
	}
	return false
}

var positionGroups = []PositionGroup{
	{
		Key:       "pilares",
		Label:     "Pilares",
		Positions: []int{1, 3},
		RoleDescription: "Pilar del scrum. Responsable de la estabilidad en scrum fijo, " +
			"trabajo físico en ruck y maul y presencia defensiva cercana al contacto.",
	},
	{
		Key:       "hooker",
		Label:     "Hooker",
		Positions: []int{2},
		RoleDescription: "Lanzador de line, pilar del scrum y enlace entre forwards y backs. " +
			"Combina trabajo físico con distribución.",
	},
	{
		Key:       "segunda_linea",
		Label:     "2da Línea",
		Positions: []int{4, 5},
		RoleDescription: "Motor del line-out y del maul, aporta metros en el carry y es " +
			"referencia en el juego aéreo y el trabajo de ruck.",
	},
	{
		Key:       "tercera_linea",
		Label:     "Tercera Línea",
		Positions: []int{6, 7, 8},
		RoleDescription: "Alas y N°8. Protagonistas en el breakdown, líderes en tackles " +
			"y capaces de aportar en ataque con carries y quiebres.",
	},
	{
		Key:       "medio_scrum",
		Label:     "Medio Scrum",
		Positions: []int{9},
		RoleDescription: "Conductor del juego desde la base: velocidad de distribución, " +
			"juego al pie táctico y defensa en los canales internos.",
	},
	{
		Key:       "apertura",
		Label:     "Apertura",
		Positions: []int{10},
		RoleDescription: "Organizador del ataque: toma de decisiones, distribución, " +
			"juego al pie territorial y generación de oportunidades.",
	},
	{
		Key:       "centros",
		Label:     "Centros",
		Positions: []int{12, 13},
		RoleDescription: "Jugadores de choque y enlace: ganan la línea de ventaja, " +
			"distribuyen con criterio y defienden uno a uno.",
	},
	{
		Key:       "back_3",
		Label:     "Back 3",
		Positions: []int{11, 14, 15},
		RoleDescription: "Wings y fullback. Contraataque y definición: reciben en el aire, " +
			"generan quiebres, definen tries y cubren el fondo defensivo.",
	},
}

// PositionGroups returns the position groups. Every position 1-15 belongs
// to exactly one group.
func PositionGroups() []PositionGroup {
	out := make([]PositionGroup, len(positionGroups))
	for i, g := range positionGroups {
		g.Positions = append([]int(nil), g.Positions...)
		out[i] = g
	}
	return out
}

// GroupFor returns the group of position p.
func GroupFor(p int) (PositionGroup, bool) {
	for _, g := range positionGroups {
		if g.Contains(p) {
			g.Positions = append([]int(nil), g.Positions...)
			return g, true
		}
	}
	return PositionGroup{}, false
}
