package runner

// Options is the runner's invocation surface (§4.7.2), populated by the CLI
// layer from flags/config and handed to the runner unchanged.
type Options struct {
	Inputs []string

	Step string
	Stop string

	Integrator     string
	IntegratorArgs string

	BrokerArgs string

	Set         []string
	Connections []string
	FMUPath     []string
	ExtractPath string

	CoSimulation   bool
	ModelExchange  bool
	Flags          []string
	OutputVariables []string
	InputVariables  []string

	FederateName     string
	CoreType         string
	BrokerAddress    string
	AutoBroker       bool
	BrokerInitString string

	CaptureFile string
}

// preferCoSimulation reports whether a driver should be created as a
// co-simulation driver (true) or model-exchange driver (false) when both
// kinds are available (§4.7.3 "preferring the --cosim flag").
func (o *Options) preferCoSimulation() bool {
	if o.ModelExchange && !o.CoSimulation {
		return false
	}
	return true
}
