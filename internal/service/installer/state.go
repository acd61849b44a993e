package installer

type InstallState struct {
	RuntimePath string
	EnvVars     map[string]string
}

func NewInstallState(runtimePath string) *InstallState {
	return &InstallState{
		RuntimePath: runtimePath,
		EnvVars:     make(map[string]string),
	}
}
