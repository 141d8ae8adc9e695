package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/apogeehq/apogee/pkg/asdk"
	"github.com/apogeehq/apogee/pkg/asdk/jobs"
)

var (
	submitCPU         float64
	submitGPU         int
	submitGPUModel    string
	submitMemory      string
	submitExtSHM      bool
	submitHTTP        int
	submitSSH         int
	submitPreemptible bool
	submitName        string
	submitDesc        string
	submitVolumes     []string
	submitEnv         []string
	submitEnvFile     string
	submitQuiet       bool
)

var submitCmd = &cobra.Command{
	Use:   "submit [flags] IMAGE [-- CMD...]",
	Short: "Start a job from a container image",
	Long: `Start a job using IMAGE. Everything after -- is passed as the container
command.

Examples:
  # two storage paths mounted, one read-only
  apogeectl job submit --volume storage://alice/q1:/qm:ro \
    --volume storage://alice/mod:/mod:rw pytorch:latest

  # expose SSH on port 22 and set PYTHONPATH inside the container
  apogeectl job submit --env PYTHONPATH=/python --ssh 22 pytorch:latest`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig(cmd)
		if err != nil {
			return err
		}
		sdk, err := asdk.New(cfg)
		if err != nil {
			return err
		}

		memoryMB, err := parseMemory(submitMemory)
		if err != nil {
			return fmt.Errorf("invalid --memory value %q: %w", submitMemory, err)
		}

		env, err := collectEnv(submitEnv, submitEnvFile)
		if err != nil {
			return err
		}

		volumes, err := jobs.ParseVolumes(resolveOwner(cfg, sdk), submitVolumes)
		if err != nil {
			return err
		}

		sub := jobs.SubmitRequest{
			Image:   args[0],
			Command: strings.Join(args[1:], " "),
			Resources: jobs.Resources{
				CPU:      submitCPU,
				MemoryMB: jobs.Megabytes(memoryMB),
				SHM:      submitExtSHM,
				GPU:      submitGPU,
				GPUModel: submitGPUModel,
			},
			Volumes:       volumes,
			Env:           env,
			IsPreemptible: submitPreemptible,
			Name:          submitName,
			Description:   submitDesc,
		}
		if submitHTTP > 0 {
			sub.HTTP = &jobs.HTTPPort{Port: submitHTTP, RequiresAuth: true}
		}
		if submitSSH > 0 {
			sub.SSH = &jobs.SSHPort{Port: submitSSH}
		}

		job, err := sdk.Jobs.Submit(cmd.Context(), sub)
		if err != nil {
			exitIfSdkError(err)
			return nil
		}

		if submitQuiet {
			fmt.Println(job.ID)
			return nil
		}
		fmt.Printf("Job ID: %s\n", job.ID)
		fmt.Printf("Status: %s\n", job.Status)
		if job.HTTPURL != "" {
			fmt.Printf("HTTP URL: %s\n", job.HTTPURL)
		}
		fmt.Printf("Follow its output with: apogeectl job logs %s\n", job.ID)
		return nil
	},
}

var memorySuffix = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*([KMGT])B?$`)

// parseMemory converts a human memory amount into whole megabytes. Bare
// binary-style suffixes (256M, 4G) are read as IEC units, matching what
// users mean when sizing containers.
func parseMemory(s string) (int, error) {
	normalized := strings.TrimSpace(s)
	if m := memorySuffix.FindStringSubmatch(strings.ToUpper(normalized)); m != nil {
		normalized = m[1] + m[2] + "iB"
	}
	b, err := humanize.ParseBytes(normalized)
	if err != nil {
		return 0, err
	}
	return int(b / humanize.MiByte), nil
}

// collectEnv merges --env-file entries with --env flags; flags win. A bare
// NAME imports the variable from the caller's environment.
func collectEnv(flags []string, envFile string) (map[string]string, error) {
	env := map[string]string{}
	if envFile != "" {
		fromFile, err := godotenv.Read(envFile)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
		}
		for k, v := range fromFile {
			env[k] = v
		}
	}
	for _, entry := range flags {
		name, value, found := strings.Cut(entry, "=")
		if !found {
			value = os.Getenv(name)
		}
		env[name] = value
	}
	if len(env) == 0 {
		return nil, nil
	}
	return env, nil
}

func init() {
	jobCmd.AddCommand(submitCmd)
	submitCmd.Flags().Float64VarP(&submitCPU, "cpu", "c", 1, "Number of CPUs to request")
	submitCmd.Flags().IntVarP(&submitGPU, "gpu", "g", 0, "Number of GPUs to request")
	submitCmd.Flags().StringVar(&submitGPUModel, "gpu-model", "", "GPU model to request")
	submitCmd.Flags().StringVarP(&submitMemory, "memory", "m", "1G", "Memory amount to request")
	submitCmd.Flags().BoolVarP(&submitExtSHM, "extshm", "x", false, "Request extended '/dev/shm' space")
	submitCmd.Flags().IntVar(&submitHTTP, "http", 0, "Expose an HTTP port on the container")
	submitCmd.Flags().IntVar(&submitSSH, "ssh", 0, "Expose an SSH port on the container")
	submitCmd.Flags().BoolVar(&submitPreemptible, "preemptible", true, "Run on a lower-cost preemptible instance")
	submitCmd.Flags().StringVarP(&submitName, "name", "n", "", "Optional job name")
	submitCmd.Flags().StringVarP(&submitDesc, "description", "d", "", "Optional job description")
	submitCmd.Flags().StringArrayVar(&submitVolumes, "volume", nil, "Mount storage into the container (storage://path:/mount[:ro|rw]); repeatable")
	submitCmd.Flags().StringArrayVarP(&submitEnv, "env", "e", nil, "Set an environment variable (VAR=VAL or VAR); repeatable")
	submitCmd.Flags().StringVar(&submitEnvFile, "env-file", "", "File with environment variables to pass")
	submitCmd.Flags().BoolVarP(&submitQuiet, "quiet", "q", false, "Print only the job id")
}
