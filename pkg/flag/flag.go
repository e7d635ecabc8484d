package flag

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/pflag"
)

type envFlag struct {
	fs      *pflag.FlagSet
	name    string
	envName string
}

var (
	pendingLock sync.Mutex
	pending     []envFlag
)

// EnvName returns the environment variable that can be used to set the given flag.
func EnvName(prefix string, name string) string {
	full := name
	if prefix != "" {
		full = prefix + "-" + name
	}
	return strings.ToUpper(strings.ReplaceAll(full, "-", "_"))
}

func StringVarEnv(fs *pflag.FlagSet, p *string, prefix string, name string, value string, usage string) {
	fs.StringVar(p, name, value, withEnvUsage(usage, prefix, name))
	register(fs, prefix, name)
}

func BoolVarEnv(fs *pflag.FlagSet, p *bool, prefix string, name string, value bool, usage string) {
	fs.BoolVar(p, name, value, withEnvUsage(usage, prefix, name))
	register(fs, prefix, name)
}

func Int64VarEnv(fs *pflag.FlagSet, p *int64, prefix string, name string, value int64, usage string) {
	fs.Int64Var(p, name, value, withEnvUsage(usage, prefix, name))
	register(fs, prefix, name)
}

func DurationVarEnv(fs *pflag.FlagSet, p *time.Duration, prefix string, name string, value time.Duration, usage string) {
	fs.DurationVar(p, name, value, withEnvUsage(usage, prefix, name))
	register(fs, prefix, name)
}

// Parse applies environment values to every flag registered since the last call. It must run
// before the command line is parsed so that explicit flags still take precedence.
func Parse() error {
	pendingLock.Lock()
	defer pendingLock.Unlock()

	var errs []string
	for _, f := range pending {
		val, ok := os.LookupEnv(f.envName)
		if !ok {
			continue
		}
		fl := f.fs.Lookup(f.name)
		if fl == nil {
			continue
		}
		if err := fl.Value.Set(val); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", f.envName, err.Error()))
			continue
		}
		fl.DefValue = fl.Value.String()
	}
	pending = nil
	if len(errs) > 0 {
		return fmt.Errorf("invalid environment values: %s", strings.Join(errs, ", "))
	}
	return nil
}

func register(fs *pflag.FlagSet, prefix string, name string) {
	pendingLock.Lock()
	defer pendingLock.Unlock()
	pending = append(pending, envFlag{fs: fs, name: name, envName: EnvName(prefix, name)})
}

func withEnvUsage(usage string, prefix string, name string) string {
	if usage == "" {
		return fmt.Sprintf("[$%s]", EnvName(prefix, name))
	}
	return fmt.Sprintf("%s [$%s]", usage, EnvName(prefix, name))
}
