package chrome

import "github.com/mj1618/stepwright/internal/platform"

func init() {
	platform.NewLauncherFunc = func(opts platform.LaunchOptions) (platform.Launcher, error) {
		return NewLauncher(opts), nil
	}
}
