package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/investiq/internal/ui/theme"
)

const bannerArt = `
 ██╗███╗   ██╗██╗   ██╗███████╗███████╗████████╗██╗ ██████╗
 ██║████╗  ██║██║   ██║██╔════╝██╔════╝╚══██╔══╝██║██╔═══██╗
 ██║██╔██╗ ██║██║   ██║█████╗  ███████╗   ██║   ██║██║   ██║
 ██║██║╚██╗██║╚██╗ ██╔╝██╔══╝  ╚════██║   ██║   ██║██║▄▄ ██║
 ██║██║ ╚████║ ╚████╔╝ ███████╗███████║   ██║   ██║╚██████╔╝
 ╚═╝╚═╝  ╚═══╝  ╚═══╝  ╚══════╝╚══════╝   ╚═╝   ╚═╝ ╚══▀▀═╝`

const bannerCompact = "I N V E S T I Q"

// RenderBanner returns the INVESTIQ banner in the primary color, falling
// back to spaced letters below 64 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 64 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
