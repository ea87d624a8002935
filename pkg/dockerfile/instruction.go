package dockerfile

import (
	"errors"
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// ErrPortOutOfRange is returned when an exposed port does not fit in 16 bits.
var ErrPortOutOfRange = errors.New("port out of range")

// Instruction is a single Dockerfile build step. The set of implementations
// is closed to this package. String renders the step without a trailing
// newline.
type Instruction interface {
	fmt.Stringer
	instruction()
}

// TagOrDigest pins a base image either to a tag or to a content digest.
type TagOrDigest interface {
	suffix() string
}

// Tag is an image tag, e.g. "latest".
type Tag string

func (t Tag) suffix() string { return ":" + string(t) }

// Digest is an image content digest, e.g. "sha256:...".
type Digest string

func (d Digest) suffix() string { return "@" + string(d) }

// From is the base image of a build stage
type From struct {
	Image string
	Ref   TagOrDigest // nil means no tag and no digest
	Name  string      // stage name, optional
}

func NewFrom(image string) From {
	return From{Image: image}
}

// WithTag returns a copy of f pinned to tag. Any digest is dropped.
func (f From) WithTag(tag string) From {
	f.Ref = Tag(tag)
	return f
}

// WithDigest returns a copy of f pinned to digest. Any tag is dropped.
func (f From) WithDigest(digest string) From {
	f.Ref = Digest(digest)
	return f
}

// As returns a copy of f with the stage name set.
func (f From) As(name string) From {
	f.Name = name
	return f
}

func (f From) String() string {
	s := KeywordFrom + " " + f.Image
	if f.Ref != nil {
		s += f.Ref.suffix()
	}
	if f.Name != "" {
		s += " AS " + f.Name
	}
	return s
}

// Maintainer is deprecated in favour of a Label with the "maintainer" key.
type Maintainer struct {
	Name string
}

func (m Maintainer) String() string {
	return KeywordMaintainer + " " + m.Name
}

// EquivalentTo reports whether l carries the maintainer label with the same
// name. The comparison only goes one way: a Label is never asked whether it
// equals a Maintainer.
func (m Maintainer) EquivalentTo(l Label) bool {
	name, ok := l.Get(MaintainerLabel)
	return ok && name == m.Name
}

type Run struct {
	Params []string
}

func NewRun(params ...string) Run {
	return Run{Params: slices.Clone(params)}
}

func (r Run) String() string { return execForm(KeywordRun, r.Params) }

type Cmd struct {
	Params []string
}

func NewCmd(params ...string) Cmd {
	return Cmd{Params: slices.Clone(params)}
}

func (c Cmd) String() string { return execForm(KeywordCmd, c.Params) }

type EntryPoint struct {
	Params []string
}

func NewEntryPoint(params ...string) EntryPoint {
	return EntryPoint{Params: slices.Clone(params)}
}

func (e EntryPoint) String() string { return execForm(KeywordEntrypoint, e.Params) }

// Shell overrides the default shell used by the shell form of later steps.
type Shell struct {
	Params []string
}

func NewShell(params ...string) Shell {
	return Shell{Params: slices.Clone(params)}
}

func (s Shell) String() string { return execForm(KeywordShell, s.Params) }

type Volume struct {
	Paths []string
}

func NewVolume(paths ...string) Volume {
	return Volume{Paths: slices.Clone(paths)}
}

func (v Volume) String() string { return execForm(KeywordVolume, v.Paths) }

// Label holds image metadata. Keys are unique; setting a key twice keeps the
// last value. A Label needs at least one entry to be rendered in a Dockerfile.
type Label struct {
	pairs map[string]string
}

func NewLabel(key, value string) Label {
	return Label{pairs: map[string]string{key: value}}
}

func LabelFromMap(m map[string]string) Label {
	return Label{pairs: maps.Clone(m)}
}

// LabelFromSeq collects pairs in order, so a repeated key keeps its last value.
func LabelFromSeq(seq iter.Seq2[string, string]) Label {
	return Label{pairs: maps.Collect(seq)}
}

// With returns a copy of l with key set to value.
func (l Label) With(key, value string) Label {
	pairs := maps.Clone(l.pairs)
	if pairs == nil {
		pairs = map[string]string{}
	}
	pairs[key] = value
	return Label{pairs: pairs}
}

func (l Label) Get(key string) (string, bool) {
	v, ok := l.pairs[key]
	return v, ok
}

func (l Label) Len() int { return len(l.pairs) }

func (l Label) String() string { return keyValues(KeywordLabel, l.pairs) }

// Env sets environment variables. Keys are unique; setting a key twice keeps
// the last value. An Env needs at least one entry to be rendered in a
// Dockerfile.
type Env struct {
	pairs map[string]string
}

func NewEnv(key, value string) Env {
	return Env{pairs: map[string]string{key: value}}
}

func EnvFromMap(m map[string]string) Env {
	return Env{pairs: maps.Clone(m)}
}

// EnvFromSeq collects pairs in order, so a repeated key keeps its last value.
func EnvFromSeq(seq iter.Seq2[string, string]) Env {
	return Env{pairs: maps.Collect(seq)}
}

// With returns a copy of e with key set to value.
func (e Env) With(key, value string) Env {
	pairs := maps.Clone(e.pairs)
	if pairs == nil {
		pairs = map[string]string{}
	}
	pairs[key] = value
	return Env{pairs: pairs}
}

func (e Env) Get(key string) (string, bool) {
	v, ok := e.pairs[key]
	return v, ok
}

func (e Env) Len() int { return len(e.pairs) }

func (e Env) String() string { return keyValues(KeywordEnv, e.pairs) }

type Expose struct {
	Port  uint16
	Proto string // e.g. "tcp" or "udp", optional
}

// NewExpose fails with ErrPortOutOfRange unless 0 <= port <= 65535.
func NewExpose(port int, proto string) (Expose, error) {
	if port < 0 || port > math.MaxUint16 {
		return Expose{}, fmt.Errorf("%w: %d", ErrPortOutOfRange, port)
	}
	return Expose{Port: uint16(port), Proto: proto}, nil
}

func (e Expose) String() string {
	s := KeywordExpose + " " + strconv.Itoa(int(e.Port))
	if e.Proto != "" {
		s += "/" + e.Proto
	}
	return s
}

// User sets the user (and optionally group) for the following steps. It also
// describes file ownership for Add and Copy.
type User struct {
	Name  string
	Group string // optional
}

func NewUser(name string) User {
	return User{Name: name}
}

func (u User) spec() string {
	if u.Group == "" {
		return u.Name
	}
	return u.Name + ":" + u.Group
}

func (u User) String() string {
	return KeywordUser + " " + u.spec()
}

type Add struct {
	Src   string
	Dst   string
	Chown *User
}

func NewAdd(src, dst string) Add {
	return Add{Src: src, Dst: dst}
}

func (a Add) String() string {
	parts := []string{KeywordAdd}
	if a.Chown != nil {
		parts = append(parts, "--chown="+a.Chown.spec())
	}
	parts = append(parts, quote(a.Src), quote(a.Dst))
	return strings.Join(parts, " ")
}

type Copy struct {
	Src   string
	Dst   string
	From  string // source stage, optional
	Chown *User
}

func NewCopy(src, dst string) Copy {
	return Copy{Src: src, Dst: dst}
}

func (c Copy) String() string {
	parts := []string{KeywordCopy}
	if c.From != "" {
		parts = append(parts, "--from="+c.From)
	}
	if c.Chown != nil {
		parts = append(parts, "--chown="+c.Chown.spec())
	}
	parts = append(parts, quote(c.Src), quote(c.Dst))
	return strings.Join(parts, " ")
}

type WorkDir struct {
	Path string
}

func (w WorkDir) String() string {
	return KeywordWorkdir + " " + quote(w.Path)
}

// Arg declares a build argument, with an optional default value.
type Arg struct {
	Name  string
	Value *string
}

func NewArg(name string) Arg {
	return Arg{Name: name}
}

func NewArgWithValue(name, value string) Arg {
	return Arg{Name: name, Value: &value}
}

func (a Arg) String() string {
	if a.Value == nil {
		return KeywordArg + " " + a.Name
	}
	return KeywordArg + " " + a.Name + "=" + quote(*a.Value)
}

type StopSignal struct {
	Signal string
}

func (s StopSignal) String() string {
	return KeywordStopsignal + " " + s.Signal
}

// HealthCheck either disables the health check inherited from the base image
// or configures a check command. The optional numeric settings are only
// rendered when set.
type HealthCheck struct {
	Disabled    bool
	Cmd         Cmd
	Interval    *int
	Timeout     *int
	StartPeriod *int
	Retries     *int
}

type HealthCheckOption func(*HealthCheck)

func WithInterval(n int) HealthCheckOption {
	return func(h *HealthCheck) { h.Interval = &n }
}

func WithTimeout(n int) HealthCheckOption {
	return func(h *HealthCheck) { h.Timeout = &n }
}

func WithStartPeriod(n int) HealthCheckOption {
	return func(h *HealthCheck) { h.StartPeriod = &n }
}

func WithRetries(n int) HealthCheckOption {
	return func(h *HealthCheck) { h.Retries = &n }
}

func NewHealthCheck(cmd Cmd, opts ...HealthCheckOption) HealthCheck {
	h := HealthCheck{Cmd: cmd}
	for _, opt := range opts {
		opt(&h)
	}
	return h
}

// NoHealthCheck disables any health check inherited from the base image.
func NoHealthCheck() HealthCheck {
	return HealthCheck{Disabled: true}
}

func (h HealthCheck) String() string {
	if h.Disabled {
		return KeywordHealthcheck + " NONE"
	}
	parts := []string{KeywordHealthcheck}
	for _, flag := range []struct {
		name  string
		value *int
	}{
		{"interval", h.Interval},
		{"timeout", h.Timeout},
		{"start-period", h.StartPeriod},
		{"retries", h.Retries},
	} {
		if flag.value != nil {
			parts = append(parts, fmt.Sprintf("--%s=%d", flag.name, *flag.value))
		}
	}
	parts = append(parts, h.Cmd.String())
	return strings.Join(parts, " ")
}

// Comment is ignored by the builder. Text is written verbatim.
type Comment struct {
	Text string
}

func NewComment(text string) Comment {
	return Comment{Text: text}
}

func (c Comment) String() string {
	return CommentMarker + " " + c.Text
}

// OnBuild wraps an instruction that only runs in builds using this image as
// their base.
type OnBuild struct {
	Instruction Instruction
}

func NewOnBuild(i Instruction) OnBuild {
	return OnBuild{Instruction: i}
}

func (o OnBuild) String() string {
	if o.Instruction == nil {
		return KeywordOnbuild
	}
	return KeywordOnbuild + " " + o.Instruction.String()
}

func (From) instruction()        {}
func (Maintainer) instruction()  {}
func (Run) instruction()         {}
func (Cmd) instruction()         {}
func (EntryPoint) instruction()  {}
func (Shell) instruction()       {}
func (Volume) instruction()      {}
func (Label) instruction()       {}
func (Env) instruction()         {}
func (Expose) instruction()      {}
func (User) instruction()        {}
func (Add) instruction()         {}
func (Copy) instruction()        {}
func (WorkDir) instruction()     {}
func (Arg) instruction()         {}
func (StopSignal) instruction()  {}
func (HealthCheck) instruction() {}
func (Comment) instruction()     {}
func (OnBuild) instruction()     {}

func quote(s string) string {
	return `"` + s + `"`
}

// execForm renders the JSON-array form, e.g. RUN ["a", "b"]. Arguments are
// quoted as-is; embedded quotes are the caller's problem.
func execForm(keyword string, params []string) string {
	quoted := make([]string, len(params))
	for i, p := range params {
		quoted[i] = quote(p)
	}
	return keyword + " [" + strings.Join(quoted, ", ") + "]"
}

// keyValues renders k="v" pairs sorted by key. Multiple pairs are split over
// continuation lines aligned under the first pair. Without pairs only the
// keyword is rendered, which docker build rejects; Dockerfile skips such
// instructions.
func keyValues(keyword string, pairs map[string]string) string {
	if len(pairs) == 0 {
		return keyword
	}
	entries := make([]string, 0, len(pairs))
	for _, key := range slices.Sorted(maps.Keys(pairs)) {
		entries = append(entries, key+"="+quote(escapeNewlines(pairs[key])))
	}
	separator := " \\\n" + strings.Repeat(" ", len(keyword)+1)
	return keyword + " " + strings.Join(entries, separator)
}

func escapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "\\\n")
}
