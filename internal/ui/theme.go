package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
	"github.com/tartampluch/go-cycle/internal/cycle"
)

// palette holds the colors of one visual theme.
type palette struct {
	dark       bool
	background color.Color
	card       color.Color
	primary    color.Color
	text       color.Color

	flowLight  color.Color
	flowMedium color.Color
	flowHeavy  color.Color
	predicted  color.Color
	ovulation  color.Color
	fertile    color.Color
	luteal     color.Color
	today      color.Color
}

func rgb(r, g, b uint8) color.Color {
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}
}

var palettes = map[string]palette{
	"default": {
		background: rgb(0xf7, 0xf5, 0xfc), card: rgb(0xff, 0xff, 0xff),
		primary: rgb(0x7c, 0x4d, 0xb8), text: rgb(0x2d, 0x23, 0x42),
		flowLight: rgb(0xf8, 0xc8, 0xd4), flowMedium: rgb(0xf0, 0x8d, 0xa8), flowHeavy: rgb(0xd6, 0x45, 0x6e),
		predicted: rgb(0xe6, 0xdc, 0xf7), ovulation: rgb(0x8f, 0xb8, 0xf0), fertile: rgb(0xc9, 0xe4, 0xf5),
		luteal: rgb(0xf1, 0xee, 0xf6), today: rgb(0x4a, 0x2f, 0x86),
	},
	"earth": {
		background: rgb(0xf4, 0xef, 0xe6), card: rgb(0xfb, 0xf8, 0xf2),
		primary: rgb(0x7a, 0x8b, 0x69), text: rgb(0x3e, 0x32, 0x26),
		flowLight: rgb(0xe8, 0xc4, 0xb0), flowMedium: rgb(0xc8, 0x8a, 0x6a), flowHeavy: rgb(0x9a, 0x4f, 0x35),
		predicted: rgb(0xe3, 0xd9, 0xc6), ovulation: rgb(0xa9, 0xba, 0x8e), fertile: rgb(0xd3, 0xdd, 0xc1),
		luteal: rgb(0xee, 0xe7, 0xdb), today: rgb(0x5c, 0x45, 0x33),
	},
	"monochrome": {
		background: rgb(0xfa, 0xfa, 0xfa), card: rgb(0xff, 0xff, 0xff),
		primary: rgb(0x22, 0x22, 0x22), text: rgb(0x11, 0x11, 0x11),
		flowLight: rgb(0xd0, 0xd0, 0xd0), flowMedium: rgb(0x8c, 0x8c, 0x8c), flowHeavy: rgb(0x44, 0x44, 0x44),
		predicted: rgb(0xe8, 0xe8, 0xe8), ovulation: rgb(0xb0, 0xb0, 0xb0), fertile: rgb(0xdc, 0xdc, 0xdc),
		luteal: rgb(0xf2, 0xf2, 0xf2), today: rgb(0x00, 0x00, 0x00),
	},
	"calm": {
		background: rgb(0xfb, 0xf8, 0xf1), card: rgb(0xff, 0xfd, 0xf8),
		primary: rgb(0x5b, 0x8d, 0xb8), text: rgb(0x2f, 0x3e, 0x4c),
		flowLight: rgb(0xf3, 0xd1, 0xcf), flowMedium: rgb(0xe0, 0x9e, 0x9a), flowHeavy: rgb(0xbf, 0x64, 0x62),
		predicted: rgb(0xe2, 0xe9, 0xf1), ovulation: rgb(0x9c, 0xc3, 0xe0), fertile: rgb(0xd5, 0xe6, 0xf1),
		luteal: rgb(0xf3, 0xef, 0xe4), today: rgb(0x2f, 0x5d, 0x86),
	},
	"dark": {
		dark:       true,
		background: rgb(0x1c, 0x1b, 0x22), card: rgb(0x27, 0x26, 0x30),
		primary: rgb(0xb3, 0x8c, 0xe8), text: rgb(0xe8, 0xe6, 0xef),
		flowLight: rgb(0x6b, 0x3a, 0x4a), flowMedium: rgb(0x9c, 0x3d, 0x5c), flowHeavy: rgb(0xc9, 0x3b, 0x6a),
		predicted: rgb(0x3d, 0x35, 0x52), ovulation: rgb(0x34, 0x5e, 0x8f), fertile: rgb(0x2a, 0x45, 0x5c),
		luteal: rgb(0x2c, 0x2a, 0x36), today: rgb(0xe0, 0xc8, 0xff),
	},
}

func paletteFor(key string) palette {
	if p, ok := palettes[key]; ok {
		return p
	}
	return palettes[cycle.ResolveTheme(key).Key]
}

// cellColor returns the background of a day cell for its display category.
func (p palette) cellColor(cls cycle.Classification) color.Color {
	switch cls.Category {
	case cycle.CategoryPeriod:
		switch cls.Intensity {
		case cycle.FlowLight:
			return p.flowLight
		case cycle.FlowHeavy:
			return p.flowHeavy
		default:
			return p.flowMedium
		}
	case cycle.CategoryPredictedPeriod:
		return p.predicted
	case cycle.CategoryOvulation:
		return p.ovulation
	case cycle.CategoryFertile:
		return p.fertile
	case cycle.CategoryLuteal:
		return p.luteal
	default:
		return p.card
	}
}

// cycleTheme adapts a palette to fyne.Theme, delegating everything else to the default theme.
type cycleTheme struct {
	key string
	p   palette
}

func newCycleTheme(t cycle.Theme) *cycleTheme {
	return &cycleTheme{key: t.Key, p: paletteFor(t.Key)}
}

func (t *cycleTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if t.p.dark {
		variant = theme.VariantDark
	} else {
		variant = theme.VariantLight
	}
	switch name {
	case theme.ColorNameBackground:
		return t.p.background
	case theme.ColorNameInputBackground, theme.ColorNameMenuBackground, theme.ColorNameOverlayBackground:
		return t.p.card
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return t.p.primary
	case theme.ColorNameForeground:
		return t.p.text
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *cycleTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *cycleTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *cycleTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
