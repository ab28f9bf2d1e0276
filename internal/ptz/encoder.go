package ptz

// Encode validates the request parameters and builds the command quadruple.
// The only error returned is *RangeError.
func Encode(req Request) (Command, error) {
	spec, _ := Lookup(req.Family, req.Action)
	p := req.Params

	switch spec.Rule {
	case RuleDirection:
		mask, stop := ResolveDirection(req.Action)
		if stop {
			return Command{}, nil
		}
		return Command{
			Code:      mask,
			Param1:    byte(p.HorizonSpeed),
			Param2:    byte(p.VerticalSpeed),
			Combined2: byte(p.ZoomSpeed),
		}, nil

	case RuleIris, RuleFocus:
		speed, err := ValidateLensSpeed(req.Action == ActionStop, p.Speed)
		if err != nil {
			return Command{}, err
		}
		if spec.Rule == RuleIris {
			return Command{Code: spec.Base, Param2: byte(speed)}, nil
		}
		return Command{Code: spec.Base, Param1: byte(speed)}, nil

	case RulePreset:
		if err := spec.value.run(&p); err != nil {
			return Command{}, err
		}
		return Command{Code: spec.Base, Param1: 1, Param2: byte(*spec.value.value(&p))}, nil

	case RuleGroup:
		group, err := runGroup(spec, &p)
		if err != nil {
			return Command{}, err
		}
		data2 := spec.Arg
		if spec.value.set() {
			if err := spec.value.run(&p); err != nil {
				return Command{}, err
			}
			data2 = byte(*spec.value.value(&p))
		}
		return Command{Code: spec.Base, Param1: group, Param2: data2}, nil

	case RulePacked:
		group, err := runGroup(spec, &p)
		if err != nil {
			return Command{}, err
		}
		if err := spec.value.run(&p); err != nil {
			return Command{}, err
		}
		data2, combined2 := Pack(*spec.value.value(&p))
		return Command{Code: spec.Base, Param1: group, Param2: data2, Combined2: combined2}, nil

	case RuleZero:
		if _, err := runGroup(spec, &p); err != nil {
			return Command{}, err
		}
		return Command{}, nil

	case RuleSwitch:
		data1 := spec.Arg
		if spec.value.set() {
			if err := spec.value.run(&p); err != nil {
				return Command{}, err
			}
			data1 = byte(*spec.value.value(&p))
		}
		return Command{Code: spec.Base, Param1: data1}, nil

	case RuleRaw:
		for _, c := range []check{checkCode, checkParam1, checkParam2, checkCombined2} {
			if err := c.run(&p); err != nil {
				return Command{}, err
			}
		}
		return Command{
			Code:      byte(*p.Code),
			Param1:    byte(*p.Param1),
			Param2:    byte(*p.Param2),
			Combined2: byte(*p.Combined2),
		}, nil
	}

	return Command{}, nil
}

// EncodeFor is Encode with the command addressed to a device channel
func EncodeFor(deviceID, channelID string, req Request) (Command, error) {
	cmd, err := Encode(req)
	if err != nil {
		return Command{}, err
	}
	cmd.DeviceID = deviceID
	cmd.ChannelID = channelID
	return cmd, nil
}

func runGroup(spec CommandSpec, p *Params) (byte, error) {
	if !spec.group.set() {
		return 0, nil
	}
	if err := spec.group.run(p); err != nil {
		return 0, err
	}
	return byte(*spec.group.value(p)), nil
}
