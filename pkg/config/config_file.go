package config

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/replicate/dockgen/pkg/dockerfile"
)

// ConfigFile represents the raw dockgen.yaml as written by users.
// Pointer fields distinguish "not set" from "set to zero value".
// This struct is only used during parsing - validation produces errors,
// conversion produces a *dockerfile.Dockerfile.
type ConfigFile struct {
	Version    *string    `yaml:"version,omitempty"`
	From       *string    `yaml:"from,omitempty"`
	Maintainer *string    `yaml:"maintainer,omitempty"`
	Steps      []StepFile `yaml:"steps,omitempty"`
	OnBuild    []StepFile `yaml:"on_build,omitempty"`
	EntryPoint []string   `yaml:"entrypoint,omitempty"`
	Cmd        []string   `yaml:"cmd,omitempty"`
}

// StepFile is one entry of steps or on_build. Exactly one field must be set.
type StepFile struct {
	Comment     *string           `yaml:"comment,omitempty"`
	From        *string           `yaml:"from,omitempty"`
	Run         []string          `yaml:"run,omitempty"`
	Label       map[string]string `yaml:"label,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"`
	Expose      *ExposeFile       `yaml:"expose,omitempty"`
	Add         *AddFile          `yaml:"add,omitempty"`
	Copy        *CopyFile         `yaml:"copy,omitempty"`
	Volume      []string          `yaml:"volume,omitempty"`
	User        *OwnerFile        `yaml:"user,omitempty"`
	WorkDir     *string           `yaml:"workdir,omitempty"`
	Arg         *ArgFile          `yaml:"arg,omitempty"`
	StopSignal  *string           `yaml:"stopsignal,omitempty"`
	HealthCheck *HealthCheckFile  `yaml:"healthcheck,omitempty"`
	Shell       []string          `yaml:"shell,omitempty"`
}

// kinds lists the instruction kinds set on the step, in declaration order.
func (s *StepFile) kinds() []string {
	var kinds []string
	for _, k := range []struct {
		name string
		set  bool
	}{
		{"comment", s.Comment != nil},
		{"from", s.From != nil},
		{"run", s.Run != nil},
		{"label", s.Label != nil},
		{"env", s.Env != nil},
		{"expose", s.Expose != nil},
		{"add", s.Add != nil},
		{"copy", s.Copy != nil},
		{"volume", s.Volume != nil},
		{"user", s.User != nil},
		{"workdir", s.WorkDir != nil},
		{"arg", s.Arg != nil},
		{"stopsignal", s.StopSignal != nil},
		{"healthcheck", s.HealthCheck != nil},
		{"shell", s.Shell != nil},
	} {
		if k.set {
			kinds = append(kinds, k.name)
		}
	}
	return kinds
}

// ExposeFile is a port, written either as a number or as "port/proto".
type ExposeFile struct {
	Spec string
}

// UnmarshalYAML accepts both `expose: 80` and `expose: 53/udp`.
func (e *ExposeFile) UnmarshalYAML(unmarshal func(any) error) error {
	var portOrSpec any
	if err := unmarshal(&portOrSpec); err != nil {
		return err
	}

	switch v := portOrSpec.(type) {
	case int:
		e.Spec = strconv.Itoa(v)
	case string:
		e.Spec = v
	default:
		return fmt.Errorf("unexpected type %T for expose", v)
	}
	return nil
}

// OwnerFile is a user with an optional group, written either as "user:group"
// or as a mapping.
type OwnerFile struct {
	Name  string `yaml:"name"`
	Group string `yaml:"group,omitempty"`
}

// UnmarshalYAML accepts both `user: app:staff` and `user: {name: app, group: staff}`.
func (o *OwnerFile) UnmarshalYAML(unmarshal func(any) error) error {
	var specOrMap any
	if err := unmarshal(&specOrMap); err != nil {
		return err
	}

	switch v := specOrMap.(type) {
	case string:
		user := dockerfile.ParseUser(v)
		o.Name, o.Group = user.Name, user.Group
	case int:
		o.Name = strconv.Itoa(v)
	case map[any]any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		aux := struct {
			Name  string `yaml:"name"`
			Group string `yaml:"group"`
		}{}
		if err := yaml.Unmarshal(data, &aux); err != nil {
			return err
		}
		o.Name = aux.Name
		o.Group = aux.Group
	default:
		return fmt.Errorf("unexpected type %T for user", v)
	}
	return nil
}

type AddFile struct {
	Src   string     `yaml:"src"`
	Dst   string     `yaml:"dst"`
	Chown *OwnerFile `yaml:"chown,omitempty"`
}

type CopyFile struct {
	Src   string     `yaml:"src"`
	Dst   string     `yaml:"dst"`
	From  string     `yaml:"from,omitempty"`
	Chown *OwnerFile `yaml:"chown,omitempty"`
}

type ArgFile struct {
	Name  string  `yaml:"name"`
	Value *string `yaml:"value,omitempty"`
}

// HealthCheckFile is either the string "none" or a check command with
// optional settings.
type HealthCheckFile struct {
	Disabled    bool
	Cmd         []string
	Interval    *int
	Timeout     *int
	StartPeriod *int
	Retries     *int
}

// UnmarshalYAML accepts both `healthcheck: none` and `healthcheck: {cmd: [...], retries: 3}`.
func (h *HealthCheckFile) UnmarshalYAML(unmarshal func(any) error) error {
	var none string
	if err := unmarshal(&none); err == nil {
		if none != "none" {
			return fmt.Errorf("healthcheck must be \"none\" or a mapping, got %q", none)
		}
		h.Disabled = true
		return nil
	}

	aux := struct {
		Cmd         []string `yaml:"cmd"`
		Interval    *int     `yaml:"interval"`
		Timeout     *int     `yaml:"timeout"`
		StartPeriod *int     `yaml:"start_period"`
		Retries     *int     `yaml:"retries"`
	}{}
	if err := unmarshal(&aux); err != nil {
		return err
	}
	h.Cmd = aux.Cmd
	h.Interval = aux.Interval
	h.Timeout = aux.Timeout
	h.StartPeriod = aux.StartPeriod
	h.Retries = aux.Retries
	return nil
}
