// Package dockerfile models a Dockerfile as typed instructions and renders it
// to the text consumed by docker build.
//
//	df := dockerfile.New(dockerfile.NewFrom("nginx").WithTag("latest")).
//		Comment("open port for server").
//		Expose(dockerfile.Expose{Port: 80}).
//		Copy(dockerfile.NewCopy(".", ".")).
//		SetCmd(dockerfile.NewCmd("echo", "Hello from container!"))
//	fmt.Print(df)
//
// A Dockerfile is not safe for concurrent mutation. Once fully built it can be
// rendered from several goroutines at once.
package dockerfile

import (
	"io"
	"slices"
	"strings"
)

// Dockerfile accumulates instructions in call order. The base image is fixed
// at construction; maintainer, entrypoint and cmd are single slots that are
// replaced on reassignment.
type Dockerfile struct {
	from         From
	maintainer   *Maintainer
	entryPoint   *EntryPoint
	cmd          *Cmd
	instructions []Instruction
	onBuilds     []OnBuild
}

func New(from From) *Dockerfile {
	return &Dockerfile{from: from}
}

func (d *Dockerfile) From() From {
	return d.from
}

// Instructions returns the body instructions in insertion order.
func (d *Dockerfile) Instructions() []Instruction {
	return slices.Clone(d.instructions)
}

// OnBuilds returns the triggered instructions in insertion order.
func (d *Dockerfile) OnBuilds() []OnBuild {
	return slices.Clone(d.onBuilds)
}

// SetMaintainer replaces any previously set maintainer.
//
// Deprecated: use Label with the "maintainer" key.
func (d *Dockerfile) SetMaintainer(name string) *Dockerfile {
	d.maintainer = &Maintainer{Name: name}
	return d
}

// SetEntryPoint replaces any previously set entrypoint.
func (d *Dockerfile) SetEntryPoint(e EntryPoint) *Dockerfile {
	d.entryPoint = &e
	return d
}

// SetCmd replaces any previously set default command.
func (d *Dockerfile) SetCmd(c Cmd) *Dockerfile {
	d.cmd = &c
	return d
}

// Append adds i to the body of the Dockerfile. A nil i is ignored.
func (d *Dockerfile) Append(i Instruction) *Dockerfile {
	if i == nil {
		return d
	}
	d.instructions = append(d.instructions, i)
	return d
}

// OnBuild adds i to the instructions triggered by downstream builds. A nil i
// is ignored.
func (d *Dockerfile) OnBuild(i Instruction) *Dockerfile {
	if i == nil {
		return d
	}
	d.onBuilds = append(d.onBuilds, NewOnBuild(i))
	return d
}

func (d *Dockerfile) Run(params ...string) *Dockerfile {
	return d.Append(NewRun(params...))
}

func (d *Dockerfile) Label(l Label) *Dockerfile {
	return d.Append(l)
}

func (d *Dockerfile) Expose(e Expose) *Dockerfile {
	return d.Append(e)
}

func (d *Dockerfile) Env(e Env) *Dockerfile {
	return d.Append(e)
}

func (d *Dockerfile) Add(a Add) *Dockerfile {
	return d.Append(a)
}

func (d *Dockerfile) Copy(c Copy) *Dockerfile {
	return d.Append(c)
}

func (d *Dockerfile) Volume(paths ...string) *Dockerfile {
	return d.Append(NewVolume(paths...))
}

func (d *Dockerfile) User(u User) *Dockerfile {
	return d.Append(u)
}

func (d *Dockerfile) WorkDir(path string) *Dockerfile {
	return d.Append(WorkDir{Path: path})
}

func (d *Dockerfile) Arg(a Arg) *Dockerfile {
	return d.Append(a)
}

func (d *Dockerfile) StopSignal(signal string) *Dockerfile {
	return d.Append(StopSignal{Signal: signal})
}

func (d *Dockerfile) HealthCheck(h HealthCheck) *Dockerfile {
	return d.Append(h)
}

func (d *Dockerfile) Shell(params ...string) *Dockerfile {
	return d.Append(NewShell(params...))
}

func (d *Dockerfile) Comment(text string) *Dockerfile {
	return d.Append(NewComment(text))
}

// sections groups the rendered lines. Empty sections are left out so the
// writer can put exactly one blank line between the rest.
func (d *Dockerfile) sections() [][]string {
	sections := [][]string{{d.from.String()}}
	if d.maintainer != nil {
		sections = append(sections, []string{d.maintainer.String()})
	}
	sections = appendSection(sections, d.instructions)
	sections = appendSection(sections, d.onBuilds)

	var tail []string
	if d.entryPoint != nil {
		tail = append(tail, d.entryPoint.String())
	}
	if d.cmd != nil {
		tail = append(tail, d.cmd.String())
	}
	if len(tail) > 0 {
		sections = append(sections, tail)
	}
	return sections
}

func appendSection[T Instruction](sections [][]string, instructions []T) [][]string {
	var lines []string
	for _, instruction := range instructions {
		if blank(instruction) {
			continue
		}
		lines = append(lines, instruction.String())
	}
	if len(lines) == 0 {
		return sections
	}
	return append(sections, lines)
}

// blank reports whether i would render a line docker build rejects: a Label
// or Env without entries, or an OnBuild wrapping one.
func blank(i Instruction) bool {
	switch v := i.(type) {
	case nil:
		return true
	case Label:
		return v.Len() == 0
	case Env:
		return v.Len() == 0
	case OnBuild:
		return blank(v.Instruction)
	}
	return false
}

// WriteTo renders the Dockerfile to w. Every line, including the last, ends
// with a newline. Labels and envs without entries are left out. Errors from w
// are returned unchanged.
func (d *Dockerfile) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for i, section := range d.sections() {
		if i > 0 {
			n, err := io.WriteString(w, "\n")
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
		for _, line := range section {
			n, err := io.WriteString(w, line+"\n")
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

func (d *Dockerfile) String() string {
	var b strings.Builder
	// strings.Builder never fails
	_, _ = d.WriteTo(&b)
	return b.String()
}
