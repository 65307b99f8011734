package fmi

import "github.com/pkg/errors"

// SetMode drives the instance from its current mode to target, issuing
// whatever ABI calls the FMI 2.0 state machine prescribes for that hop
// (§4.4.1). Co-simulation instances only ever run in `step`: requests for
// `continuous-time` or `event` are coerced there first, since a
// co-simulation FMU has no concept of either.
func (inst *Instance) SetMode(target Mode) error {
	if inst.kind == KindCoSimulation && (target == ModeContinuousTime || target == ModeEvent) {
		target = ModeStep
	}

	if target == ModeError {
		inst.currentMode = ModeError
		return errors.New("fmi: explicit transition to error mode")
	}

	if inst.currentMode == target {
		return nil
	}

	if inst.currentMode == ModeError {
		if target == ModeTerminated {
			inst.currentMode = ModeTerminated
			return nil
		}
		return errors.Errorf("fmi: instance is in error mode, cannot transition to %s", target)
	}

	switch inst.currentMode {
	case ModeInstantiated:
		return inst.fromInstantiated(target)
	case ModeInitialization:
		return inst.fromInitialization(target)
	case ModeEvent:
		return inst.fromEvent(target)
	case ModeContinuousTime:
		return inst.fromContinuousTime(target)
	case ModeStep:
		return inst.fromStep(target)
	}
	return errors.Errorf("fmi: no transition from %s to %s", inst.currentMode, target)
}

// fromInstantiated implements every "From instantiated" rule in §4.4.1:
// initialization populates the default active I/O sets before entering;
// everything else routes through initialization first.
func (inst *Instance) fromInstantiated(target Mode) error {
	if len(inst.activeInputs.refs) == 0 && len(inst.activeOutputs.refs) == 0 {
		inst.setDefaultInputs()
		inst.setDefaultOutputs()
	}
	if err := inst.callEnterInitializationMode(); err != nil {
		inst.currentMode = ModeError
		return err
	}
	inst.currentMode = ModeInitialization
	if target == ModeInitialization {
		return nil
	}
	return inst.fromInitialization(target)
}

// fromInitialization implements the "From initialization" rules, plus the
// model-exchange continuous-time override (which also routes through
// initialization's common exit path before diverging).
func (inst *Instance) fromInitialization(target Mode) error {
	switch target {
	case ModeStep, ModeEvent, ModeTerminated:
		if err := inst.callExitInitializationMode(); err != nil {
			inst.currentMode = ModeError
			return err
		}
		inst.currentMode = ModeEvent
		switch target {
		case ModeEvent:
			return nil
		case ModeTerminated:
			return inst.toTerminated()
		case ModeStep:
			inst.currentMode = ModeStep
			return nil
		}
	case ModeContinuousTime:
		if err := inst.fromInitialization(ModeEvent); err != nil {
			return err
		}
		return inst.enterContinuousTimeIfStateful()
	}
	return errors.Errorf("fmi: no transition from %s to %s", ModeInitialization, target)
}

func (inst *Instance) fromEvent(target Mode) error {
	switch target {
	case ModeContinuousTime:
		return inst.enterContinuousTimeIfStateful()
	case ModeEvent:
		if err := inst.callEnterEventMode(); err != nil {
			inst.currentMode = ModeError
			return err
		}
		inst.currentMode = ModeEvent
		return nil
	case ModeTerminated:
		return inst.toTerminated()
	}
	return errors.Errorf("fmi: no transition from %s to %s", ModeEvent, target)
}

func (inst *Instance) fromContinuousTime(target Mode) error {
	switch target {
	case ModeEvent:
		if err := inst.callEnterEventMode(); err != nil {
			inst.currentMode = ModeError
			return err
		}
		inst.currentMode = ModeEvent
		return nil
	case ModeTerminated:
		return inst.toTerminated()
	}
	return errors.Errorf("fmi: no transition from %s to %s", ModeContinuousTime, target)
}

func (inst *Instance) fromStep(target Mode) error {
	if target == ModeTerminated {
		return inst.toTerminated()
	}
	return errors.Errorf("fmi: no transition from %s to %s", ModeStep, target)
}

// enterContinuousTimeIfStateful is the guarded continuous-time entry shared
// by instantiated|initialization→continuous-time and event→continuous-time:
// a stateless model has nothing to integrate, so the transition succeeds
// without an ABI call (§4.4.1).
func (inst *Instance) enterContinuousTimeIfStateful() error {
	if inst.catalog.GetCounts(CountStates) == 0 {
		inst.currentMode = ModeContinuousTime
		return nil
	}
	if err := inst.callEnterContinuousTimeMode(); err != nil {
		inst.currentMode = ModeError
		return err
	}
	inst.currentMode = ModeContinuousTime
	return nil
}

// toTerminated calls Terminate unconditionally from whatever state called
// it; SetMode's callers are responsible for first reaching a state from
// which Terminate is legal.
func (inst *Instance) toTerminated() error {
	if err := inst.callTerminate(); err != nil {
		inst.currentMode = ModeError
		return err
	}
	inst.currentMode = ModeTerminated
	return nil
}

func (inst *Instance) callEnterInitializationMode() error {
	status := callCompStatus(inst.common.enterInitializationMode, inst.comp)
	return inst.raise("fmi2EnterInitializationMode", status)
}

func (inst *Instance) callExitInitializationMode() error {
	status := callCompStatus(inst.common.exitInitializationMode, inst.comp)
	return inst.raise("fmi2ExitInitializationMode", status)
}

func (inst *Instance) callTerminate() error {
	status := callCompStatus(inst.common.terminate, inst.comp)
	return inst.raise("fmi2Terminate", status)
}

func (inst *Instance) callEnterEventMode() error {
	if inst.me == nil || !inst.me.enterEventMode.bound() {
		return nil
	}
	status := callCompStatus(inst.me.enterEventMode, inst.comp)
	return inst.raise("fmi2EnterEventMode", status)
}

func (inst *Instance) callEnterContinuousTimeMode() error {
	if inst.me == nil || !inst.me.enterContinuousTimeMode.bound() {
		return nil
	}
	status := callCompStatus(inst.me.enterContinuousTimeMode, inst.comp)
	return inst.raise("fmi2EnterContinuousTimeMode", status)
}
