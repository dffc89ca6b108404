package tui

import (
	"fmt"
	"math"
	"sort"

	"github.com/gdamore/tcell/v2"

	"snowman/internal/game"
)

var (
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleGhost   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleSnow    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleHeld    = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleLowTime = tcell.StyleDefault.Foreground(tcell.ColorRed).Background(tcell.ColorNavy).Bold(true)
)

var accessoryGlyphs = map[game.PartType]rune{
	game.HandLeft:  '/',
	game.HandRight: '\\',
	game.Scarf:     '≈',
	game.Hat:       '▀',
	game.Eyes:      '¨',
	game.Mouth:     '‿',
	game.Carrot:    '>',
}

var accessoryColors = map[game.PartType]tcell.Color{
	game.HandLeft:  tcell.ColorMaroon,
	game.HandRight: tcell.ColorMaroon,
	game.Scarf:     tcell.ColorRed,
	game.Hat:       tcell.ColorDarkGray,
	game.Eyes:      tcell.ColorWhite,
	game.Mouth:     tcell.ColorWhite,
	game.Carrot:    tcell.ColorOrange,
}

func isSnowball(t game.PartType) bool {
	return t == game.SnowballBase || t == game.SnowballMiddle || t == game.SnowballHead
}

// Draw renders the current session snapshot.
func (a *App) Draw() {
	a.screen.Clear()
	cols, rows := a.screen.Size()
	if a.session == nil {
		a.screen.Show()
		return
	}
	snap := a.session.Snapshot()

	targets := append([]game.TargetView(nil), snap.Targets...)
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].DrawOrder < targets[j].DrawOrder })
	for _, t := range targets {
		a.drawShape(t.Type, t.X, t.Y, t.Radius, styleGhost, true)
	}

	placed := append([]game.PartView(nil), snap.Placed...)
	sort.SliceStable(placed, func(i, j int) bool { return placed[i].DrawOrder < placed[j].DrawOrder })
	for _, p := range placed {
		a.drawShape(p.Type, p.X, p.Y, p.Radius, partStyle(p.Type), false)
	}
	var held *game.PartView
	for i := range snap.Pool {
		p := snap.Pool[i]
		if p.Held {
			held = &snap.Pool[i]
			continue
		}
		a.drawShape(p.Type, p.X, p.Y, p.Radius, partStyle(p.Type), false)
	}
	if held != nil {
		a.drawShape(held.Type, held.X, held.Y, held.Radius, styleHeld, false)
	}

	hudStyle := styleHUD
	if snap.State == game.StatePlaying && snap.Remaining <= 10 {
		hudStyle = styleLowTime
	}
	hud := fmt.Sprintf(" %s  %d:%02d  Score %d  %d/%d parts ",
		snap.PlayerName, snap.Remaining/60, snap.Remaining%60, snap.Score, snap.PartsPlaced, snap.TotalParts)
	a.fillRow(0, cols, hudStyle)
	a.drawText(0, 0, hud, hudStyle)
	a.drawText(0, rows-1, a.status, styleStatus)
	a.screen.Show()
}

func partStyle(t game.PartType) tcell.Style {
	if isSnowball(t) {
		return styleSnow
	}
	return tcell.StyleDefault.Foreground(accessoryColors[t])
}

// drawShape fills snowballs across every cell inside their radius and marks
// accessories with a single glyph at their center.
func (a *App) drawShape(t game.PartType, x, y, radius float64, style tcell.Style, ghost bool) {
	cx, cy := CellOf(game.Point{X: x, Y: y})
	if !isSnowball(t) {
		glyph := accessoryGlyphs[t]
		if ghost {
			glyph = '·'
		}
		a.setCell(cx, cy, glyph, style)
		return
	}
	glyph := '█'
	if ghost {
		glyph = '░'
	}
	spanX := int(math.Ceil(radius/CellWidth)) + 1
	spanY := int(math.Ceil(radius/CellHeight)) + 1
	center := game.Point{X: x, Y: y}
	for dy := -spanY; dy <= spanY; dy++ {
		for dx := -spanX; dx <= spanX; dx++ {
			if CellCenter(cx+dx, cy+dy).Dist(center) <= radius || (dx == 0 && dy == 0) {
				a.setCell(cx+dx, cy+dy, glyph, style)
			}
		}
	}
}

// setCell writes inside the board, leaving the HUD and status rows alone.
func (a *App) setCell(x, y int, r rune, style tcell.Style) {
	cols, rows := a.screen.Size()
	if x < 0 || x >= cols || y < 1 || y >= rows-1 {
		return
	}
	a.screen.SetContent(x, y, r, nil, style)
}

func (a *App) fillRow(y, cols int, style tcell.Style) {
	for x := 0; x < cols; x++ {
		a.screen.SetContent(x, y, ' ', nil, style)
	}
}

func (a *App) drawText(x, y int, text string, style tcell.Style) {
	cols, _ := a.screen.Size()
	for _, r := range text {
		if x >= cols {
			return
		}
		a.screen.SetContent(x, y, r, nil, style)
		x++
	}
}
