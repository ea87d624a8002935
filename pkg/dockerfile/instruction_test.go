package dockerfile

import (
	"maps"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	for _, tt := range []struct {
		name     string
		from     From
		expected string
	}{
		{"image only", NewFrom("rust"), "FROM rust"},
		{"tag", NewFrom("rust").WithTag("latest"), "FROM rust:latest"},
		{"tag and name", NewFrom("rust").WithTag("latest").As("crab"), "FROM rust:latest AS crab"},
		{"digest", NewFrom("rust").WithDigest("digest"), "FROM rust@digest"},
		{"digest and name", NewFrom("rust").WithDigest("digest").As("crab"), "FROM rust@digest AS crab"},
		{"name only", NewFrom("rust").As("crab"), "FROM rust AS crab"},
		{"digest replaces tag", NewFrom("rust").WithTag("latest").WithDigest("digest"), "FROM rust@digest"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.from.String())
		})
	}
}

func TestExecForm(t *testing.T) {
	curl := []string{"curl", "-v", "https://example.com"}

	require.Equal(t, `RUN ["curl", "-v", "https://example.com"]`, NewRun(curl...).String())
	require.Equal(t, `CMD ["curl", "-v", "https://example.com"]`, NewCmd(curl...).String())
	require.Equal(t, `ENTRYPOINT ["curl", "-v", "https://example.com"]`, NewEntryPoint(curl...).String())
	require.Equal(t, `SHELL ["bash", "-c"]`, NewShell("bash", "-c").String())
	require.Equal(t, `VOLUME ["/var/run", "/var/www"]`, NewVolume("/var/run", "/var/www").String())
	require.Equal(t, `RUN []`, NewRun().String())
}

func TestExecFormDoesNotEscapeQuotes(t *testing.T) {
	require.Equal(t, `RUN ["echo", "say "hi""]`, NewRun("echo", `say "hi"`).String())
}

func TestExecFormCopiesParams(t *testing.T) {
	params := []string{"echo", "one"}
	run := NewRun(params...)
	params[1] = "two"
	require.Equal(t, `RUN ["echo", "one"]`, run.String())
}

func TestExecFormPreservesCountAndOrder(t *testing.T) {
	params := []string{"z", "a", "m", "", "b c"}
	rendered := NewRun(params...).String()

	body := strings.TrimSuffix(strings.TrimPrefix(rendered, "RUN ["), "]")
	elements := strings.Split(body, ", ")
	require.Len(t, elements, len(params))
	for i, p := range params {
		require.Equal(t, `"`+p+`"`, elements[i])
	}
}

func TestLabel(t *testing.T) {
	require.Equal(t, `LABEL key="value"`, NewLabel("key", "value").String())

	require.Equal(t, "LABEL key=\"1\\\n2\\\n3\"", NewLabel("key", "1\n2\n3").String())

	label := LabelFromMap(map[string]string{"key": "value", "hello": "world"})
	require.Equal(t, "LABEL hello=\"world\" \\\n      key=\"value\"", label.String())
}

func TestLabelWith(t *testing.T) {
	base := NewLabel("a", "1")
	extended := base.With("b", "2")

	require.Equal(t, 1, base.Len())
	require.Equal(t, 2, extended.Len())

	var empty Label
	require.Equal(t, 0, empty.Len())
	require.Equal(t, `LABEL a="1"`, empty.With("a", "1").String())
}

func TestLabelDuplicateKeysLastWins(t *testing.T) {
	pairs := func(yield func(string, string) bool) {
		_ = yield("key", "first") && yield("other", "x") && yield("key", "second")
	}
	label := LabelFromSeq(pairs)
	require.Equal(t, 2, label.Len())
	value, ok := label.Get("key")
	require.True(t, ok)
	require.Equal(t, "second", value)

	require.Equal(t, `LABEL key="new"`, NewLabel("key", "old").With("key", "new").String())
}

func TestLabelFromMapCopiesInput(t *testing.T) {
	m := map[string]string{"a": "1"}
	label := LabelFromMap(m)
	m["a"] = "2"
	require.Equal(t, `LABEL a="1"`, label.String())
}

func TestEnv(t *testing.T) {
	require.Equal(t, `ENV key="value"`, NewEnv("key", "value").String())

	env := EnvFromMap(map[string]string{"PATH": "/bin", "HOME": "/root"})
	require.Equal(t, "ENV HOME=\"/root\" \\\n    PATH=\"/bin\"", env.String())

	require.Equal(t, "ENV MULTI=\"a\\\nb\"", NewEnv("MULTI", "a\nb").String())

	value, ok := env.With("PATH", "/usr/bin").Get("PATH")
	require.True(t, ok)
	require.Equal(t, "/usr/bin", value)
}

func TestKeyValuesEveryEntryOnce(t *testing.T) {
	pairs := map[string]string{
		"alpha": "1",
		"beta":  "two\nlines",
		"gamma": "3",
		"delta": "",
	}
	rendered := EnvFromMap(pairs).String()

	for key, value := range pairs {
		entry := key + `="` + strings.ReplaceAll(value, "\n", "\\\n") + `"`
		require.Equal(t, 1, strings.Count(rendered, entry), "entry %s", entry)
	}
	// the only raw newlines are continuations
	for _, line := range strings.Split(rendered, "\n")[:strings.Count(rendered, "\n")] {
		require.True(t, strings.HasSuffix(line, `\`), "line %q", line)
	}

	// rendering is stable regardless of map iteration order
	for range 10 {
		require.Equal(t, rendered, EnvFromMap(maps.Clone(pairs)).String())
	}
}

func TestMaintainer(t *testing.T) {
	maintainer := Maintainer{Name: "Someone"}
	require.Equal(t, "MAINTAINER Someone", maintainer.String())

	require.True(t, maintainer.EquivalentTo(NewLabel(MaintainerLabel, "Someone")))
	require.True(t, maintainer.EquivalentTo(NewLabel("other", "x").With(MaintainerLabel, "Someone")))
	require.False(t, maintainer.EquivalentTo(NewLabel(MaintainerLabel, "Someone Else")))
	require.False(t, maintainer.EquivalentTo(NewLabel("author", "Someone")))
	require.False(t, maintainer.EquivalentTo(Label{}))
}

func TestExpose(t *testing.T) {
	expose, err := NewExpose(80, "")
	require.NoError(t, err)
	require.Equal(t, "EXPOSE 80", expose.String())

	expose, err = NewExpose(80, "tcp")
	require.NoError(t, err)
	require.Equal(t, "EXPOSE 80/tcp", expose.String())

	expose, err = NewExpose(65535, "udp")
	require.NoError(t, err)
	require.Equal(t, "EXPOSE 65535/udp", expose.String())

	expose, err = NewExpose(0, "")
	require.NoError(t, err)
	require.Equal(t, "EXPOSE 0", expose.String())
}

func TestExposeOutOfRange(t *testing.T) {
	for _, port := range []int{-1, 65536, 100000} {
		_, err := NewExpose(port, "tcp")
		require.ErrorIs(t, err, ErrPortOutOfRange)
	}
}

func TestAdd(t *testing.T) {
	add := NewAdd("/home/container001", "/")
	require.Equal(t, `ADD "/home/container001" "/"`, add.String())

	add.Chown = &User{Name: "rustacean"}
	require.Equal(t, `ADD --chown=rustacean "/home/container001" "/"`, add.String())

	add.Chown.Group = "root"
	require.Equal(t, `ADD --chown=rustacean:root "/home/container001" "/"`, add.String())
}

func TestCopy(t *testing.T) {
	chown := &User{Name: "rustacean", Group: "root"}

	for _, tt := range []struct {
		name     string
		copy     Copy
		expected string
	}{
		{
			name:     "from and chown",
			copy:     Copy{Src: "/home/container001", Dst: "/", From: "crab", Chown: chown},
			expected: `COPY --from=crab --chown=rustacean:root "/home/container001" "/"`,
		},
		{
			name:     "from",
			copy:     Copy{Src: "/home/container001", Dst: "/", From: "crab"},
			expected: `COPY --from=crab "/home/container001" "/"`,
		},
		{
			name:     "chown",
			copy:     Copy{Src: "/home/container001", Dst: "/", Chown: chown},
			expected: `COPY --chown=rustacean:root "/home/container001" "/"`,
		},
		{
			name:     "plain",
			copy:     NewCopy("/home/container001", "/"),
			expected: `COPY "/home/container001" "/"`,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.copy.String())
		})
	}
}

func TestUser(t *testing.T) {
	require.Equal(t, "USER rustacean:root", User{Name: "rustacean", Group: "root"}.String())
	require.Equal(t, "USER rustacean", NewUser("rustacean").String())
}

func TestWorkDir(t *testing.T) {
	require.Equal(t, `WORKDIR "/var/run"`, WorkDir{Path: "/var/run"}.String())
}

func TestArg(t *testing.T) {
	require.Equal(t, `ARG name="value"`, NewArgWithValue("name", "value").String())
	require.Equal(t, `ARG name=""`, NewArgWithValue("name", "").String())
	require.Equal(t, "ARG name", NewArg("name").String())
}

func TestStopSignal(t *testing.T) {
	require.Equal(t, "STOPSIGNAL SIGKILL", StopSignal{Signal: "SIGKILL"}.String())
}

func TestHealthCheck(t *testing.T) {
	cmd := NewCmd("curl", "-v", "https://example.com")

	check := NewHealthCheck(cmd,
		WithInterval(0),
		WithTimeout(3600),
		WithStartPeriod(123),
		WithRetries(2),
	)
	require.Equal(t, `HEALTHCHECK --interval=0 --timeout=3600 --start-period=123 --retries=2 CMD ["curl", "-v", "https://example.com"]`, check.String())

	require.Equal(t, `HEALTHCHECK --retries=3 CMD ["curl", "-v", "https://example.com"]`, NewHealthCheck(cmd, WithRetries(3)).String())

	// options are rendered in a fixed order, not in the order given
	require.Equal(t, `HEALTHCHECK --interval=5 --timeout=1 CMD ["true"]`, NewHealthCheck(NewCmd("true"), WithTimeout(1), WithInterval(5)).String())

	require.Equal(t, `HEALTHCHECK CMD ["true"]`, NewHealthCheck(NewCmd("true")).String())

	require.Equal(t, "HEALTHCHECK NONE", NoHealthCheck().String())
}

func TestComment(t *testing.T) {
	require.Equal(t, "# This is an example comment", NewComment("This is an example comment").String())
}

func TestOnBuild(t *testing.T) {
	onBuild := NewOnBuild(NewCmd("curl", "-v", "https://example.com"))
	require.Equal(t, `ONBUILD CMD ["curl", "-v", "https://example.com"]`, onBuild.String())

	onBuild = NewOnBuild(Copy{Src: ".", Dst: "/app", Chown: &User{Name: "app"}})
	require.Equal(t, `ONBUILD COPY --chown=app "." "/app"`, onBuild.String())
}

func TestEveryInstructionHasKeyword(t *testing.T) {
	expose, err := NewExpose(80, "")
	require.NoError(t, err)

	instructions := []Instruction{
		NewFrom("a"), Maintainer{Name: "a"}, NewRun("a"), NewCmd("a"), NewEntryPoint("a"),
		NewShell("a"), NewVolume("a"), NewLabel("a", "b"), NewEnv("a", "b"), expose,
		NewUser("a"), NewAdd("a", "b"), NewCopy("a", "b"), WorkDir{Path: "a"}, NewArg("a"),
		StopSignal{Signal: "a"}, NoHealthCheck(), NewComment("a"), NewOnBuild(NewRun("a")),
	}
	keywords := []string{
		KeywordFrom, KeywordMaintainer, KeywordRun, KeywordCmd, KeywordEntrypoint,
		KeywordShell, KeywordVolume, KeywordLabel, KeywordEnv, KeywordExpose,
		KeywordUser, KeywordAdd, KeywordCopy, KeywordWorkdir, KeywordArg,
		KeywordStopsignal, KeywordHealthcheck, CommentMarker, KeywordOnbuild,
	}
	require.Len(t, instructions, len(keywords))
	for i, instruction := range instructions {
		first, _, _ := strings.Cut(instruction.String(), " ")
		require.Equal(t, keywords[i], first)
		require.False(t, strings.HasSuffix(instruction.String(), "\n"))
	}
}
