package main

import (
	"embed"
	"io/fs"
	"log"
	goruntime "runtime"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/menu/keys"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"compilepad/internal/app"
)

//go:embed all:frontend/dist
var assets embed.FS

// buildMenu wires the File and Run menus. Callbacks run off the menu
// thread so native dialogs can be shown from them. Activations that need
// the editor text are handed to the frontend, which holds the latest edit.
func buildMenu(a *app.App) *menu.Menu {
	appMenu := menu.NewMenu()
	if goruntime.GOOS == "darwin" {
		appMenu.Append(menu.AppMenu())
	}

	fileMenu := appMenu.AddSubmenu("File")
	fileMenu.AddText("New", keys.CmdOrCtrl("n"), func(_ *menu.CallbackData) {
		go a.NewDocument()
	})
	fileMenu.AddText("Open…", keys.CmdOrCtrl("o"), func(_ *menu.CallbackData) {
		go a.OpenDocument()
	})
	fileMenu.AddSeparator()
	fileMenu.AddText("Save", keys.CmdOrCtrl("s"), func(_ *menu.CallbackData) {
		a.RequestActivation(app.EventMenuSave)
	})
	fileMenu.AddText("Save As…", keys.Combo("s", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		a.RequestActivation(app.EventMenuSaveAs)
	})

	if goruntime.GOOS == "darwin" {
		appMenu.Append(menu.EditMenu())
	}

	runMenu := appMenu.AddSubmenu("Run")
	runMenu.AddText("Compile & Run", keys.CmdOrCtrl("r"), func(_ *menu.CallbackData) {
		a.RequestActivation(app.EventMenuCompileRun)
	})
	runMenu.AddText("Run in Console", keys.Combo("r", keys.CmdOrCtrlKey, keys.ShiftKey), func(_ *menu.CallbackData) {
		a.RequestActivation(app.EventMenuConsoleRun)
	})
	runMenu.AddText("Stop Console Run", nil, func(_ *menu.CallbackData) {
		go a.StopConsoleRun()
	})

	return appMenu
}

func main() {
	// Create an instance of the app structure
	compilePad := app.NewApp()

	// Extract the embedded filesystem to serve from the correct subdirectory
	distFS, err := fs.Sub(assets, "frontend/dist")
	if err != nil {
		log.Fatal("Failed to get sub filesystem:", err)
	}

	err = wails.Run(&options.App{
		Title:     app.WindowTitle,
		Width:     800,
		Height:    600,
		MinWidth:  480,
		MinHeight: 360,
		AssetServer: &assetserver.Options{
			Assets: distFS,
		},
		Menu:             buildMenu(compilePad),
		BackgroundColour: &options.RGBA{R: 30, G: 30, B: 30, A: 1},
		OnStartup:        compilePad.Startup,
		OnShutdown:       compilePad.Shutdown,
		// Bind the app methods to the frontend
		Bind: []interface{}{
			compilePad,
		},
	})

	if err != nil {
		log.Fatal("Error:", err)
	}
}
