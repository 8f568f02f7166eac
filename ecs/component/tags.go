package component

// Name labels an entity for logs and the debug overlay.
type Name string

var NameComponent = NewComponent[Name]()

// Background is a full-screen image drawn behind the scene.
type Background struct {
	Texture string
}

var BackgroundComponent = NewComponent[Background]()
