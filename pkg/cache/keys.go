package cache

// Keyer derives cache keys.
type Keyer interface {
	// ThreadKey identifies a computed thread.
	ThreadKey(imageHash string, opts ThreadKeyOpts) string
	// ArtifactKey identifies one rendered output of a thread.
	ArtifactKey(threadHash string, opts ArtifactKeyOpts) string
}

// ThreadKeyOpts are the options that change which segments get selected.
type ThreadKeyOpts struct {
	Shape      string  `json:"shape"`
	PegSpacing float64 `json:"peg_spacing"`
	Quality    int     `json:"quality"`
	Mode       string  `json:"mode"`
	Opacity    float64 `json:"opacity"`
	Thickness  float64 `json:"thickness"`
	Invert     bool    `json:"invert"`
	Seed       uint64  `json:"seed"`
	Lines      int     `json:"lines"`
}

// ArtifactKeyOpts are the options that change a rendered output.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	ShowPegs   bool    `json:"show_pegs"`
	PegColor   string  `json:"peg_color"`
	Blur       float64 `json:"blur"`
	Capability string  `json:"capability"`
}

// DefaultKeyer hashes key options into fixed length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ThreadKey returns "thread:<sha256>".
func (DefaultKeyer) ThreadKey(imageHash string, opts ThreadKeyOpts) string {
	return hashKey("thread", imageHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(threadHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", threadHash, opts)
}
