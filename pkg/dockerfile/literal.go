package dockerfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/distribution/reference"
	"github.com/docker/go-connections/nat"
	"github.com/opencontainers/go-digest"
)

// ParseOption configures how ParseFrom interprets image references.
type ParseOption func(*parseOptions)

type parseOptions struct {
	normalized bool
}

// WithNormalizedName keeps the fully-qualified image name, e.g.
// "docker.io/library/nginx" instead of "nginx".
func WithNormalizedName() ParseOption {
	return func(o *parseOptions) {
		o.normalized = true
	}
}

// ParseFrom builds a From from the short form used on a FROM line:
// image[:tag|@digest][ AS name].
func ParseFrom(s string, opts ...ParseOption) (From, error) {
	var po parseOptions
	for _, opt := range opts {
		opt(&po)
	}

	fields := strings.Fields(s)
	var name string
	switch {
	case len(fields) == 1:
	case len(fields) == 3 && strings.EqualFold(fields[1], "AS"):
		name = fields[2]
	default:
		return From{}, fmt.Errorf("invalid base image %q: expected image[:tag|@digest][ AS name]", s)
	}

	named, err := reference.ParseNormalizedNamed(fields[0])
	if err != nil {
		return From{}, fmt.Errorf("invalid image reference %q: %w", fields[0], err)
	}

	from := From{Image: reference.FamiliarName(named), Name: name}
	if po.normalized {
		from.Image = named.Name()
	}

	tagged, isTagged := named.(reference.Tagged)
	digested, isDigested := named.(reference.Digested)
	switch {
	case isTagged && isDigested:
		return From{}, fmt.Errorf("invalid image reference %q: set either a tag or a digest, not both", fields[0])
	case isTagged:
		from.Ref = Tag(tagged.Tag())
	case isDigested:
		from.Ref = Digest(digested.Digest())
	}
	return from, nil
}

// MustParseFrom is like ParseFrom but panics on error. Use it for literals.
func MustParseFrom(s string, opts ...ParseOption) From {
	from, err := ParseFrom(s, opts...)
	if err != nil {
		panic(err)
	}
	return from
}

// ParseDigest checks that s is a well-formed content digest.
func ParseDigest(s string) (Digest, error) {
	d, err := digest.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid digest %q: %w", s, err)
	}
	return Digest(d.String()), nil
}

// ParseExpose reads a port[/proto] specification such as "8080" or "53/udp".
// No protocol is added when none is given.
func ParseExpose(spec string) (Expose, error) {
	rawPort, proto, _ := strings.Cut(spec, "/")
	if rawPort == "" {
		return Expose{}, fmt.Errorf("invalid port specification %q", spec)
	}
	if strings.HasPrefix(rawPort, "-") {
		return Expose{}, fmt.Errorf("%w: %s", ErrPortOutOfRange, rawPort)
	}
	port, err := nat.ParsePort(rawPort)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return Expose{}, fmt.Errorf("%w: %s", ErrPortOutOfRange, rawPort)
		}
		return Expose{}, fmt.Errorf("invalid port specification %q: %w", spec, err)
	}
	return NewExpose(port, proto)
}

// ParseUser reads a user[:group] specification.
func ParseUser(spec string) User {
	name, group, _ := strings.Cut(spec, ":")
	return User{Name: name, Group: group}
}
