package config

import (
	"fmt"
	"strings"

	"github.com/replicate/dockgen/pkg/dockerfile"
)

// Dockerfile turns the config into a Dockerfile model. Steps and on_build
// entries keep their order. Run ValidateConfigFile first to collect every
// problem at once; Dockerfile stops at the first one.
func (c *ConfigFile) Dockerfile() (*dockerfile.Dockerfile, error) {
	if c.From == nil || strings.TrimSpace(*c.From) == "" {
		return nil, &ValidationError{Field: "from", Message: "a base image is required"}
	}
	from, err := fromInstruction(*c.From)
	if err != nil {
		return nil, err
	}

	df := dockerfile.New(from)
	if c.Maintainer != nil {
		df.SetMaintainer(*c.Maintainer)
	}
	for i := range c.Steps {
		instruction, err := stepInstruction(fmt.Sprintf("steps[%d]", i), &c.Steps[i])
		if err != nil {
			return nil, err
		}
		df.Append(instruction)
	}
	for i := range c.OnBuild {
		instruction, err := stepInstruction(fmt.Sprintf("on_build[%d]", i), &c.OnBuild[i])
		if err != nil {
			return nil, err
		}
		df.OnBuild(instruction)
	}
	if c.EntryPoint != nil {
		df.SetEntryPoint(dockerfile.NewEntryPoint(c.EntryPoint...))
	}
	if c.Cmd != nil {
		df.SetCmd(dockerfile.NewCmd(c.Cmd...))
	}
	return df, nil
}

func fromInstruction(spec string) (dockerfile.From, error) {
	from, err := dockerfile.ParseFrom(spec)
	if err != nil {
		return dockerfile.From{}, &ValidationError{Field: "from", Value: spec, Err: err}
	}
	return from, nil
}

// stepInstruction converts a single step. field names the step in errors,
// e.g. "steps[3]".
func stepInstruction(field string, step *StepFile) (dockerfile.Instruction, error) {
	kinds := step.kinds()
	switch len(kinds) {
	case 0:
		return nil, &ValidationError{Field: field, Message: "must set an instruction"}
	case 1:
	default:
		return nil, &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must set exactly one instruction, got %s", strings.Join(kinds, ", ")),
		}
	}

	switch {
	case step.Comment != nil:
		return dockerfile.NewComment(*step.Comment), nil
	case step.From != nil:
		from, err := dockerfile.ParseFrom(*step.From)
		if err != nil {
			return nil, &ValidationError{Field: field + ".from", Value: *step.From, Err: err}
		}
		return from, nil
	case step.Run != nil:
		return dockerfile.NewRun(step.Run...), nil
	case step.Label != nil:
		return dockerfile.LabelFromMap(step.Label), nil
	case step.Env != nil:
		return dockerfile.EnvFromMap(step.Env), nil
	case step.Expose != nil:
		expose, err := dockerfile.ParseExpose(step.Expose.Spec)
		if err != nil {
			return nil, &ValidationError{Field: field + ".expose", Value: step.Expose.Spec, Err: err}
		}
		return expose, nil
	case step.Add != nil:
		return dockerfile.Add{
			Src:   step.Add.Src,
			Dst:   step.Add.Dst,
			Chown: step.Add.Chown.user(),
		}, nil
	case step.Copy != nil:
		return dockerfile.Copy{
			Src:   step.Copy.Src,
			Dst:   step.Copy.Dst,
			From:  step.Copy.From,
			Chown: step.Copy.Chown.user(),
		}, nil
	case step.Volume != nil:
		return dockerfile.NewVolume(step.Volume...), nil
	case step.User != nil:
		return *step.User.user(), nil
	case step.WorkDir != nil:
		return dockerfile.WorkDir{Path: *step.WorkDir}, nil
	case step.Arg != nil:
		if step.Arg.Value == nil {
			return dockerfile.NewArg(step.Arg.Name), nil
		}
		return dockerfile.NewArgWithValue(step.Arg.Name, *step.Arg.Value), nil
	case step.StopSignal != nil:
		return dockerfile.StopSignal{Signal: *step.StopSignal}, nil
	case step.HealthCheck != nil:
		check, err := step.HealthCheck.healthCheck(field)
		if err != nil {
			return nil, err
		}
		return check, nil
	case step.Shell != nil:
		return dockerfile.NewShell(step.Shell...), nil
	}
	panic("unreachable: step kind without conversion")
}

func (o *OwnerFile) user() *dockerfile.User {
	if o == nil {
		return nil
	}
	return &dockerfile.User{Name: o.Name, Group: o.Group}
}

func (h *HealthCheckFile) healthCheck(field string) (dockerfile.HealthCheck, error) {
	if h.Disabled {
		return dockerfile.NoHealthCheck(), nil
	}
	if len(h.Cmd) == 0 {
		return dockerfile.HealthCheck{}, &ValidationError{Field: field + ".healthcheck", Message: "cmd is required unless the health check is \"none\""}
	}
	var opts []dockerfile.HealthCheckOption
	if h.Interval != nil {
		opts = append(opts, dockerfile.WithInterval(*h.Interval))
	}
	if h.Timeout != nil {
		opts = append(opts, dockerfile.WithTimeout(*h.Timeout))
	}
	if h.StartPeriod != nil {
		opts = append(opts, dockerfile.WithStartPeriod(*h.StartPeriod))
	}
	if h.Retries != nil {
		opts = append(opts, dockerfile.WithRetries(*h.Retries))
	}
	return dockerfile.NewHealthCheck(dockerfile.NewCmd(h.Cmd...), opts...), nil
}
