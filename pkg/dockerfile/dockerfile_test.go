package dockerfile

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDockerfile(t *testing.T) {
	expose, err := NewExpose(80, "")
	require.NoError(t, err)

	content := New(NewFrom("rust").WithTag("latest")).
		SetMaintainer("lead rustacean").
		Comment("Hello, world!").
		Run("/bin/bash", "-c", "echo").
		Label(NewLabel("key", "value")).
		Expose(expose).
		Env(NewEnv("RUST", "1.0.0")).
		Add(NewAdd("/var/run", "/home")).
		Copy(NewCopy("/var/run", "/home")).
		Volume("/var/run", "/var/www").
		User(NewUser("rustacean")).
		WorkDir("/home/rustacean").
		Arg(NewArgWithValue("build", "yes")).
		StopSignal("SIGKILL").
		HealthCheck(NoHealthCheck()).
		Shell("/bin/bash", "-c").
		OnBuild(NewCmd("echo", "This is the ONBUILD command")).
		SetEntryPoint(NewEntryPoint("cargo", "check")).
		SetCmd(NewCmd("echo", "Hi!")).
		String()

	expected := `FROM rust:latest

MAINTAINER lead rustacean

# Hello, world!
RUN ["/bin/bash", "-c", "echo"]
LABEL key="value"
EXPOSE 80
ENV RUST="1.0.0"
ADD "/var/run" "/home"
COPY "/var/run" "/home"
VOLUME ["/var/run", "/var/www"]
USER rustacean
WORKDIR "/home/rustacean"
ARG build="yes"
STOPSIGNAL SIGKILL
HEALTHCHECK NONE
SHELL ["/bin/bash", "-c"]

ONBUILD CMD ["echo", "This is the ONBUILD command"]

ENTRYPOINT ["cargo", "check"]
CMD ["echo", "Hi!"]
`
	require.Equal(t, expected, content)
}

func TestDockerfileOnlyFrom(t *testing.T) {
	require.Equal(t, "FROM scratch\n", New(NewFrom("scratch")).String())
}

func TestDockerfileSkipsEmptySections(t *testing.T) {
	df := New(NewFrom("alpine")).SetCmd(NewCmd("sh"))
	require.Equal(t, "FROM alpine\n\nCMD [\"sh\"]\n", df.String())

	df = New(NewFrom("alpine")).SetEntryPoint(NewEntryPoint("sh"))
	require.Equal(t, "FROM alpine\n\nENTRYPOINT [\"sh\"]\n", df.String())

	df = New(NewFrom("alpine")).OnBuild(NewRun("make"))
	require.Equal(t, "FROM alpine\n\nONBUILD RUN [\"make\"]\n", df.String())

	df = New(NewFrom("alpine")).SetMaintainer("me").SetCmd(NewCmd("sh"))
	require.Equal(t, "FROM alpine\n\nMAINTAINER me\n\nCMD [\"sh\"]\n", df.String())
}

func TestDockerfileEntryPointFollowedByCmd(t *testing.T) {
	content := New(NewFrom("alpine")).
		SetCmd(NewCmd("c")).
		Run("true").
		SetEntryPoint(NewEntryPoint("a", "b")).
		String()

	require.Contains(t, content, "ENTRYPOINT [\"a\", \"b\"]\nCMD [\"c\"]\n")
	require.True(t, strings.HasSuffix(content, "CMD [\"c\"]\n"))
	require.False(t, strings.HasPrefix(content, "\n"))
}

func TestDockerfileSingletonsAreReplaced(t *testing.T) {
	df := New(NewFrom("alpine")).
		SetMaintainer("first").
		SetMaintainer("second").
		SetEntryPoint(NewEntryPoint("one")).
		SetEntryPoint(NewEntryPoint("two")).
		SetCmd(NewCmd("three")).
		SetCmd(NewCmd("four"))

	content := df.String()
	require.Equal(t, "FROM alpine\n\nMAINTAINER second\n\nENTRYPOINT [\"two\"]\nCMD [\"four\"]\n", content)
	require.NotContains(t, content, "first")
	require.Empty(t, df.Instructions())
}

func TestDockerfilePreservesInsertionOrder(t *testing.T) {
	df := New(NewFrom("alpine")).
		WorkDir("/b").
		Comment("a").
		Append(NewFrom("golang").As("builder")).
		Run("z").
		Env(NewEnv("A", "1"))

	content := df.String()
	require.Equal(t, `FROM alpine

WORKDIR "/b"
# a
FROM golang AS builder
RUN ["z"]
ENV A="1"
`, content)
	require.Len(t, df.Instructions(), 5)
}

func TestDockerfileOnBuildOrder(t *testing.T) {
	df := New(NewFrom("alpine")).
		OnBuild(NewRun("first")).
		Run("body").
		OnBuild(NewCopy(".", "/app"))

	require.Equal(t, `FROM alpine

RUN ["body"]

ONBUILD RUN ["first"]
ONBUILD COPY "." "/app"
`, df.String())
	require.Len(t, df.OnBuilds(), 2)
}

func TestDockerfileFromIsFixed(t *testing.T) {
	from := NewFrom("alpine").WithTag("3.20")
	df := New(from).Append(NewFrom("other"))
	require.Equal(t, from, df.From())
	require.True(t, strings.HasPrefix(df.String(), "FROM alpine:3.20\n"))
}

func TestDockerfileAccessorsReturnCopies(t *testing.T) {
	df := New(NewFrom("alpine")).Run("a")
	instructions := df.Instructions()
	instructions[0] = NewRun("b")
	require.Equal(t, "FROM alpine\n\nRUN [\"a\"]\n", df.String())
}

func TestDockerfileRenderIsDeterministic(t *testing.T) {
	df := New(NewFrom("alpine")).
		Label(LabelFromMap(map[string]string{"a": "1", "b": "2", "c": "3", "d": "4"})).
		Env(EnvFromMap(map[string]string{"X": "1", "Y": "2", "Z": "3"})).
		SetCmd(NewCmd("sh"))

	first := df.String()
	for range 20 {
		require.Equal(t, first, df.String())
	}

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = df.String()
		}()
	}
	wg.Wait()
	for _, r := range results {
		require.Equal(t, first, r)
	}
}

func TestDockerfileWriteTo(t *testing.T) {
	df := New(NewFrom("alpine")).Run("true").SetCmd(NewCmd("sh"))

	var b strings.Builder
	n, err := df.WriteTo(&b)
	require.NoError(t, err)
	require.Equal(t, df.String(), b.String())
	require.Equal(t, int64(len(b.String())), n)
}

type failingWriter struct {
	remaining int
}

var errSinkFull = errors.New("sink full")

func (w *failingWriter) Write(p []byte) (int, error) {
	if len(p) > w.remaining {
		n := w.remaining
		w.remaining = 0
		return n, errSinkFull
	}
	w.remaining -= len(p)
	return len(p), nil
}

func TestDockerfileWriteToPropagatesErrors(t *testing.T) {
	df := New(NewFrom("alpine")).Run("true")

	w := &failingWriter{remaining: len("FROM alpine\n") + 1}
	n, err := df.WriteTo(w)
	require.ErrorIs(t, err, errSinkFull)
	require.Equal(t, int64(len("FROM alpine\n")+1), n)

	_, err = df.WriteTo(&failingWriter{})
	require.Equal(t, errSinkFull, err)
}

func TestDockerfileSkipsEmptyLabelAndEnv(t *testing.T) {
	df := New(NewFrom("alpine")).
		Label(LabelFromMap(map[string]string{})).
		Env(EnvFromMap(nil)).
		OnBuild(Label{})

	require.Equal(t, "FROM alpine\n", df.String())

	df.Run("true").Env(NewEnv("A", "1")).OnBuild(Env{})
	require.Equal(t, "FROM alpine\n\nRUN [\"true\"]\nENV A=\"1\"\n", df.String())
}

func TestDockerfileIgnoresNilInstructions(t *testing.T) {
	df := New(NewFrom("alpine")).
		Append(nil).
		OnBuild(nil).
		Run("true")

	require.Len(t, df.Instructions(), 1)
	require.Empty(t, df.OnBuilds())
	require.Equal(t, "FROM alpine\n\nRUN [\"true\"]\n", df.String())

	df = New(NewFrom("alpine")).Append(OnBuild{})
	require.Equal(t, "FROM alpine\n", df.String())
	require.Equal(t, KeywordOnbuild, OnBuild{}.String())
}
