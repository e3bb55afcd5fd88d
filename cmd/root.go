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
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tebeka/atexit"

	"github.com/yugabyte/dump-anonymizer/src/config"
	"github.com/yugabyte/dump-anonymizer/src/lockfile"
	"github.com/yugabyte/dump-anonymizer/src/utils"
)

const LOCK_FILE_NAME = ".dump-anonymizer.lck"

var (
	cfgFile       string
	logDir        string
	configViper   *viper.Viper
	outputDirLock *lockfile.Lockfile
)

var rootCmd = &cobra.Command{
	Use:   "dump-anonymizer",
	Short: "Replace sensitive values in database dumps with realistic fake data.",
	Long: `Replace sensitive values in database dumps with realistic fake data.

Each configured column carries a replacement directive: a literal, a $variable, an
@generator with optional |modifiers, or an @Type(name).field accessor on a named object
whose fields stay consistent with each other.`,
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}
		v, overrides, err := initConfig(cmd)
		if err != nil {
			return err
		}
		configViper = v

		err = config.ValidateLogLevel()
		if err != nil {
			return err
		}
		InitLogging(effectiveLogDir(), cmd.Name() == "version", cmd.Name())
		for _, o := range overrides {
			log.Infof("flag %q set from config key %q = %q", o.FlagName, o.ConfigKey, o.Value)
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},

	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		unlockOutputDir()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config-file", "c", "",
		"path of the dump anonymization config file (default $DUMP_ANONYMIZER_CONFIG_FILE or ~/dump-anonymizer-config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "",
		"directory under which logs/dump-anonymizer-<command>.log is written (default: output dir, else current dir)")
	rootCmd.PersistentFlags().StringVarP(&config.LogLevel, "log-level", "l", config.INFO,
		"log level for the log file. Possible values: trace, debug, info, warn, error, fatal, panic")
}

func effectiveLogDir() string {
	if logDir != "" {
		return logDir
	}
	if outputDir != "" {
		return outputDir
	}
	return "."
}

func lockOutputDir(dir string) {
	lockFilePath, err := filepath.Abs(filepath.Join(dir, LOCK_FILE_NAME))
	if err != nil {
		utils.ErrExit("Failed to get absolute path for lockfile %q: %v\n", LOCK_FILE_NAME, err)
	}
	outputDirLock = lockfile.NewLockfile(lockFilePath)
	outputDirLock.Lock()
	log.Infof("locked output dir with %s", outputDirLock.Path())
	atexit.Register(unlockOutputDir)
}

func unlockOutputDir() {
	if outputDirLock == nil || !outputDirLock.IsLocked() {
		return
	}
	log.Infof("releasing lock %s", outputDirLock.Path())
	outputDirLock.Unlock()
	outputDirLock = nil
}
