package tray

import (
	"context"
	"sync"

	"github.com/getlantern/systray"
)

// systraySurface draws on the process-wide getlantern tray.
type systraySurface struct {
	colorMenu *systray.MenuItem
}

func (s *systraySurface) SetIcon(data []byte) { systray.SetIcon(data) }
func (s *systraySurface) SetTooltip(t string) { systray.SetTooltip(t) }

func (s *systraySurface) SetColorMenuVisible(v bool) {
	if s.colorMenu == nil {
		return
	}
	if v {
		s.colorMenu.Show()
	} else {
		s.colorMenu.Hide()
	}
}

// Run shows the tray icon and blocks until the user quits or ctx is done.
// It must be called from the main goroutine. start runs once the tray is
// ready; an error from it closes the tray and is returned. stop halts
// whatever start began and must not return while it can still call Show;
// it runs before the tray is torn down and again on exit, so it has to be
// safe to call twice.
func (it *Item) Run(ctx context.Context, start func(ctx context.Context) error, stop func()) error {
	var once sync.Once
	startErr := make(chan error, 1)
	quit := func() {
		once.Do(func() {
			stop()
			systray.Quit()
		})
	}
	onExit := func() {
		it.Close()
		stop()
	}

	onReady := func() {
		systray.SetTitle("")
		systray.SetTooltip(it.cfg.EntityID)

		mToggle := systray.AddMenuItem("Toggle", "Toggle "+it.cfg.EntityID)
		mColor := systray.AddMenuItem("Change Color", "Set the light color")
		colorItems := make([]*systray.MenuItem, len(it.cfg.Palette))
		for i, c := range it.cfg.Palette {
			colorItems[i] = mColor.AddSubMenuItem(c.Hex(), "rgb("+c.String()+")")
		}
		mColor.Hide()
		mRefresh := systray.AddMenuItem("Refresh", "Refresh now")
		systray.AddSeparator()
		mConfig := systray.AddMenuItem("Open Config", "Open the configuration file")
		mQuit := systray.AddMenuItem("Quit", "Quit hometray")

		it.attach(&systraySurface{colorMenu: mColor})

		for i, c := range it.cfg.Palette {
			go func() {
				for range colorItems[i].ClickedCh {
					it.setColor(c)
				}
			}()
		}

		go func() {
			for {
				select {
				case <-mToggle.ClickedCh:
					it.toggle()
				case <-mRefresh.ClickedCh:
					it.refresh()
				case <-mConfig.ClickedCh:
					it.openConfig()
				case <-mQuit.ClickedCh:
					it.log.Info().Msg("quit from menu")
					quit()
					return
				case <-ctx.Done():
					quit()
					return
				}
			}
		}()

		go func() {
			if err := start(ctx); err != nil {
				startErr <- err
				quit()
			}
		}()
	}

	systray.Run(onReady, onExit)
	select {
	case err := <-startErr:
		return err
	default:
		return nil
	}
}
