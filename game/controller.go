package game

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/sirupsen/logrus"

	"github.com/dimaq12/minesweeper/models"
	"github.com/dimaq12/minesweeper/storage"
)

const (
	boardPage  = "board"
	loadPage   = "load"
	savePage   = "save"
	scoresPage = "scores"

	helpText = "arrows move  enter/space/click reveal  f/right-click flag  c chord  n new  1-3 difficulty  s save  l load  h scores  q quit"
)

// GameController owns the terminal application. Every call into the
// service happens on the tview event goroutine.
type GameController struct {
	service  GameService
	renderer *Renderer
	app      *tview.Application
	pages    *tview.Pages
	saveList *tview.List
	saveName *tview.InputField
	scores   *tview.TextView
	message  string
	ctx      context.Context
	cancel   context.CancelFunc

	// flagClick turns the next cell click into a flag toggle. Set by a
	// right click.
	flagClick bool
}

func NewGameController(service GameService) *GameController {
	c := &GameController{
		service:  service,
		renderer: NewRenderer(),
		app:      tview.NewApplication(),
		pages:    tview.NewPages(),
		saveList: tview.NewList(),
		saveName: tview.NewInputField().SetLabel("Save as: ").SetFieldWidth(40),
		scores:   tview.NewTextView().SetDynamicColors(true),
		ctx:      context.Background(),
		cancel:   func() {},
	}

	help := tview.NewTextView().SetText(helpText)
	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.renderer.boardTable, 0, 1, true).
		AddItem(c.renderer.statusView, 1, 0, false).
		AddItem(help, 1, 0, false)

	c.saveList.SetBorder(true).SetTitle(" Load game (enter load, d delete, esc back) ")
	c.saveList.SetInputCapture(c.handleLoadKey)
	c.scores.SetBorder(true).SetTitle(" High scores (esc back) ")
	c.scores.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape || event.Rune() == 'q' {
			c.pages.SwitchToPage(boardPage)
			return nil
		}
		return event
	})

	c.saveName.SetBorder(true).SetTitle(" Save game (enter save, esc cancel) ")
	c.saveName.SetDoneFunc(c.finishSave)
	savePrompt := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(c.saveName, 3, 0, true).
			AddItem(nil, 0, 1, false), 52, 0, true).
		AddItem(nil, 0, 1, false)

	c.pages.AddPage(boardPage, layout, true, true)
	c.pages.AddPage(loadPage, c.saveList, true, false)
	c.pages.AddPage(savePage, savePrompt, true, false)
	c.pages.AddPage(scoresPage, c.scores, true, false)

	c.renderer.OnClick = c.clickCell
	c.renderer.boardTable.SetInputCapture(c.handleKey)
	c.renderer.boardTable.SetMouseCapture(c.handleMouse)
	c.redraw()
	return c
}

// StartGame runs the terminal UI until the player quits or ctx ends.
// saveChanges, if not nil, triggers a refresh of the load dialog.
func (c *GameController) StartGame(ctx context.Context, saveChanges <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.ctx, c.cancel = ctx, cancel

	go c.clock(ctx)
	if saveChanges != nil {
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case _, ok := <-saveChanges:
					if !ok {
						return
					}
					c.app.QueueUpdateDraw(func() {
						if name, _ := c.pages.GetFrontPage(); name == loadPage {
							c.fillSaveList()
						}
					})
				}
			}
		}()
	}
	go func() {
		<-ctx.Done()
		c.app.Stop()
	}()

	c.app.EnableMouse(true)
	return c.app.SetRoot(c.pages, true).Run()
}

// TerminateGame ends the session: the clock and watcher goroutines stop
// and the application exits.
func (c *GameController) TerminateGame() {
	c.cancel()
	c.app.Stop()
}

// clock advances the game timer once a second.
func (c *GameController) clock(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.app.QueueUpdateDraw(func() {
				if c.service.Tick() {
					c.drawStatus()
				}
			})
		}
	}
}

func (c *GameController) redraw() {
	c.renderer.DrawBoard(c.service.Board())
	c.drawStatus()
}

func (c *GameController) drawStatus() {
	c.renderer.DrawStatus(c.service.Difficulty(), c.service.Board(), c.message)
}

func (c *GameController) selection() (x, y int) {
	row, col := c.renderer.boardTable.GetSelection()
	return col, row
}

// handleKey translates board keys into service calls.
func (c *GameController) handleKey(event *tcell.EventKey) *tcell.EventKey {
	x, y := c.selection()

	switch event.Key() {
	case tcell.KeyEnter:
		c.move(c.service.Reveal, x, y)
		return nil
	case tcell.KeyEscape:
		c.TerminateGame()
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case ' ':
		c.move(c.service.Reveal, x, y)
	case 'c', 'C':
		c.move(c.service.Chord, x, y)
	case 'f', 'F':
		c.toggleFlag(x, y)
	case 'n', 'N':
		c.newGame(c.service.Difficulty())
	case '1', '2', '3':
		c.newGame(models.Difficulties()[event.Rune()-'1'])
	case 's', 'S':
		c.promptSave()
	case 'l', 'L':
		c.fillSaveList()
		c.pages.SwitchToPage(loadPage)
	case 'h', 'H':
		c.fillScores()
		c.pages.SwitchToPage(scoresPage)
	case 'q', 'Q':
		c.TerminateGame()
	default:
		return event
	}
	return nil
}

func (c *GameController) move(op func(x, y int) (MoveResult, error), x, y int) {
	res, err := op(x, y)
	if err != nil {
		c.message = err.Error()
		c.drawStatus()
		return
	}
	c.message = ""
	switch res.Status {
	case models.InProgress:
		c.renderer.RenderCells(c.service.Board(), res.Opened)
	case models.Won:
		if res.HighScore {
			c.message = "New high score!"
		}
		c.renderer.DrawBoard(c.service.Board())
	default:
		c.renderer.DrawBoard(c.service.Board())
	}
	c.drawStatus()
}

func (c *GameController) newGame(d models.Difficulty) {
	c.service.NewGame(d)
	c.message = ""
	c.redraw()
	c.renderer.boardTable.Select(0, 0)
}

// handleMouse lets the table select the clicked cell; a right click is
// turned into a left click that flags instead of revealing.
func (c *GameController) handleMouse(action tview.MouseAction, event *tcell.EventMouse) (tview.MouseAction, *tcell.EventMouse) {
	switch action {
	case tview.MouseLeftClick:
		c.flagClick = false
	case tview.MouseRightClick:
		c.flagClick = true
		return tview.MouseLeftClick, event
	}
	return action, event
}

func (c *GameController) clickCell(x, y int) {
	if c.flagClick {
		c.flagClick = false
		c.toggleFlag(x, y)
		return
	}
	c.move(c.service.Reveal, x, y)
}

func (c *GameController) toggleFlag(x, y int) {
	if _, err := c.service.ToggleFlag(x, y); err != nil {
		c.message = err.Error()
	}
	c.renderer.RenderCell(c.service.Board(), x, y)
	c.drawStatus()
}

// promptSave asks for a save name. Finished games are not saved.
func (c *GameController) promptSave() {
	if c.service.Board().Status() != models.InProgress {
		c.message = "game is over, nothing to save"
		c.drawStatus()
		return
	}
	c.saveName.SetText(storage.DefaultSaveName(time.Now()))
	c.pages.SwitchToPage(savePage)
}

func (c *GameController) finishSave(key tcell.Key) {
	c.pages.SwitchToPage(boardPage)
	if key != tcell.KeyEnter {
		return
	}
	c.save(strings.TrimSpace(c.saveName.GetText()))
}

func (c *GameController) save(name string) {
	name, err := c.service.Save(c.ctx, name)
	if err != nil {
		logrus.WithError(err).Error("saving game")
		c.message = "save failed: " + err.Error()
	} else {
		c.message = "saved as " + name
	}
	c.drawStatus()
}

// fillSaveList rebuilds the load dialog from the save directory.
func (c *GameController) fillSaveList() {
	c.saveList.Clear()
	saves, err := c.service.ListSaves(c.ctx)
	if err != nil {
		c.saveList.AddItem("error: "+err.Error(), "", 0, nil)
		return
	}
	if len(saves) == 0 {
		c.saveList.AddItem("no saved games", "", 0, nil)
		return
	}
	for _, info := range saves {
		name := info.Name
		secondary := fmt.Sprintf("%s %dx%d  %ds  %s  %s", info.Difficulty, info.Width, info.Height,
			info.Elapsed, info.Status, info.SavedAt.Local().Format("2006-01-02 15:04"))
		c.saveList.AddItem(name, secondary, 0, func() { c.load(name) })
	}
}

func (c *GameController) load(name string) {
	if err := c.service.Load(c.ctx, name); err != nil {
		logrus.WithError(err).WithField("save", name).Error("loading game")
		c.message = "load failed: " + err.Error()
	} else {
		c.message = "loaded " + name
	}
	c.redraw()
	c.pages.SwitchToPage(boardPage)
}

func (c *GameController) handleLoadKey(event *tcell.EventKey) *tcell.EventKey {
	switch {
	case event.Key() == tcell.KeyEscape:
		c.pages.SwitchToPage(boardPage)
		return nil
	case event.Key() == tcell.KeyRune && event.Rune() == 'd':
		if c.saveList.GetItemCount() == 0 {
			return nil
		}
		name, secondary := c.saveList.GetItemText(c.saveList.GetCurrentItem())
		if secondary == "" {
			return nil
		}
		if err := c.service.DeleteSave(c.ctx, name); err != nil {
			c.message = "delete failed: " + err.Error()
		}
		c.fillSaveList()
		return nil
	}
	return event
}

// fillScores lists the best times of every difficulty.
func (c *GameController) fillScores() {
	var sb strings.Builder
	for _, label := range models.Labels() {
		fmt.Fprintf(&sb, "[yellow]%s[-]\n", label)
		scores, err := c.service.HighScores(c.ctx, label)
		switch {
		case err != nil:
			fmt.Fprintf(&sb, "  error: %v\n", err)
		case len(scores) == 0:
			sb.WriteString("  no scores yet\n")
		}
		for i, sc := range scores {
			fmt.Fprintf(&sb, "  %2d. %4ds  %dx%d/%d  %s\n", i+1, sc.Seconds, sc.Width, sc.Height, sc.Mines,
				sc.AchievedAt.Local().Format("2006-01-02 15:04"))
		}
		sb.WriteString("\n")
	}
	c.scores.SetText(sb.String())
}
