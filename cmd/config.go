/*
Copyright (c) YugabyteDB, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const CONFIG_FILE_ENV_VAR = "DUMP_ANONYMIZER_CONFIG_FILE"

var allowedGlobalConfigKeys = mapset.NewThreadUnsafeSet[string](
	"seed", "input-dir", "output-dir", "log-dir", "log-level", "disable-pb", "variables", "tables",
)

var allowedAnonymizeConfigKeys = mapset.NewThreadUnsafeSet[string](
	"seed", "input-dir", "output-dir", "disable-pb", "table-list", "error-policy",
)

var allowedTransformConfigKeys = mapset.NewThreadUnsafeSet[string](
	"seed", "value", "repeat",
)

var allowedConfigSections = map[string]mapset.Set[string]{
	"anonymize": allowedAnonymizeConfigKeys,
	"transform": allowedTransformConfigKeys,
}

// ConfigFlagOverride records a CLI flag whose value came from the config file.
type ConfigFlagOverride struct {
	FlagName  string
	ConfigKey string
	Value     string
}

/*
initConfig loads the config file for cmd into a fresh viper instance, validates its keys and
binds config values to the flags the user did not set on the command line.

	Config file precedence: --config-file > $DUMP_ANONYMIZER_CONFIG_FILE > ~/dump-anonymizer-config.yaml
	Value precedence:       CLI flag > <command>.<flag> > <flag>

A missing default config file is not an error; an explicitly named one is.
*/
func initConfig(cmd *cobra.Command) (*viper.Viper, []ConfigFlagOverride, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if os.Getenv(CONFIG_FILE_ENV_VAR) != "" {
		v.SetConfigFile(os.Getenv(CONFIG_FILE_ENV_VAR))
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, err
		}
		v.AddConfigPath(home)
		v.SetConfigName("dump-anonymizer-config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		return nil, nil, fmt.Errorf("read config file: %w", err)
	}

	err := validateConfigFile(v)
	if err != nil {
		return nil, nil, err
	}

	overrides, err := bindCobraFlagsToViper(cmd, v)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to bind cobra flags to viper: %w", err)
	}
	return v, overrides, nil
}

// validateConfigFile rejects unknown global keys, unknown sections and unknown keys inside a
// known section, printing every offender before returning.
func validateConfigFile(v *viper.Viper) error {
	invalidGlobalKeys := mapset.NewThreadUnsafeSet[string]()
	invalidSections := mapset.NewThreadUnsafeSet[string]()
	invalidSectionKeys := make(map[string]mapset.Set[string])

	for _, key := range v.AllKeys() {
		section, nestedKey, nested := strings.Cut(key, ".")
		if !nested {
			if !allowedGlobalConfigKeys.Contains(key) {
				invalidGlobalKeys.Add(key)
			}
			continue
		}
		allowedKeys, ok := allowedConfigSections[section]
		if !ok {
			invalidSections.Add(section)
			continue
		}
		if !allowedKeys.Contains(nestedKey) {
			if _, exists := invalidSectionKeys[section]; !exists {
				invalidSectionKeys[section] = mapset.NewThreadUnsafeSet[string]()
			}
			invalidSectionKeys[section].Add(nestedKey)
		}
	}

	if invalidGlobalKeys.Cardinality() == 0 && invalidSections.Cardinality() == 0 && len(invalidSectionKeys) == 0 {
		return nil
	}
	if invalidGlobalKeys.Cardinality() > 0 {
		fmt.Printf("%s [%s]\n", color.RedString("Invalid global config keys:"), strings.Join(invalidGlobalKeys.ToSlice(), ", "))
	}
	for section, keys := range invalidSectionKeys {
		fmt.Printf("%s [%s]\n", color.RedString(fmt.Sprintf("Invalid keys in section '%s':", section)), strings.Join(keys.ToSlice(), ", "))
	}
	if invalidSections.Cardinality() > 0 {
		fmt.Printf("%s [%s]\n", color.RedString("Invalid sections:"), strings.Join(invalidSections.ToSlice(), ", "))
	}
	return fmt.Errorf("found invalid configurations in config file: %s", v.ConfigFileUsed())
}

func bindCobraFlagsToViper(cmd *cobra.Command, v *viper.Viper) ([]ConfigFlagOverride, error) {
	var bindErr error
	var overrides []ConfigFlagOverride
	section := cmd.Name()

	setFromConfig := func(f *pflag.Flag, key string) {
		val := v.GetString(key)
		err := cmd.Flags().Set(f.Name, val)
		if err != nil {
			bindErr = fmt.Errorf("config key %q: %w", key, err)
			return
		}
		overrides = append(overrides, ConfigFlagOverride{FlagName: f.Name, ConfigKey: key, Value: val})
	}

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Changed || f.Name == "config-file" {
			return
		}
		if _, ok := allowedConfigSections[section]; ok && v.IsSet(section+"."+f.Name) {
			setFromConfig(f, section+"."+f.Name)
		} else if allowedGlobalConfigKeys.Contains(f.Name) && v.IsSet(f.Name) {
			setFromConfig(f, f.Name)
		}
	})
	return overrides, bindErr
}
