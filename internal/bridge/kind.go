package bridge

// Kind names the declaration flavor of a cross-context module.
type Kind string

const (
	KindWXS      Kind = "wxs"
	KindRenderJS Kind = "renderjs"
)

// TableKey is the component option key holding the name to module id table.
func (k Kind) TableKey() string {
	switch k {
	case KindWXS:
		return "wxsModules"
	case KindRenderJS:
		return "renderjsModules"
	default:
		return string(k) + "Modules"
	}
}

func (k Kind) Valid() bool {
	return k == KindWXS || k == KindRenderJS
}
