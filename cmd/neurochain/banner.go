package main

import (
	"fmt"

	"github.com/fatih/color"
)

const logo = ` _   _                      _____ _           _          _____  _____  _
| \ | |                    /  __ \ |         (_)        |  _  \/  ___|| |
|  \| | ___ _   _ _ __ ___ | /  \/ |__   __ _ _ _ __    | | | |\ ` + "`" + `--. | |
| . ` + "`" + ` |/ _ \ | | | '__/ _ \| |   | '_ \ / _` + "`" + ` | | '_ \   | | | | ` + "`" + `--. \| |
| |\  |  __/ |_| | | | (_) | \__/\ | | | (_| | | | | |  | |/ / /\__/ /| |____
\_| \_/\___|\__,_|_|  \___/ \____/_| |_|\__,_|_|_| |_|  |___/  \____/ \_____/`

func banner(suffix string) string {
	// color honors NO_COLOR and non-tty output on its own.
	return fmt.Sprintf("\n%s\n🌐 %s\n", color.HiCyanString(logo), suffix)
}

func printBanner() {
	fmt.Print(banner("Welcome to NeuroChain CLI – built for AI, logic and elegance"))
}

func printServerBanner() {
	fmt.Print(banner("Welcome to NeuroChain API – built for AI, logic and elegance"))
}
