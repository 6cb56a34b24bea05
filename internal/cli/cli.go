package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/service"
	"taskManager/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Watcher собирает проверку просроченных задач; nil interval - интервал по умолчанию
type Watcher func(notify worker.Notifier, interval *time.Duration) *worker.OverdueWorker

// Backend - всё, что нужно командам после подключения к хранилищу
type Backend struct {
	Service    TaskService
	NewWatcher Watcher
	Close      func()
}

// Connector открывает хранилище по пути к конфигу (пустой путь - поиск по умолчанию)
type Connector func(ctx context.Context, configPath string) (*Backend, error)

type CLI struct {
	RootCmd *cobra.Command

	connect    Connector
	backend    *Backend
	configPath string
	output     string
}

func New(connect Connector) *CLI {
	c := &CLI{connect: connect}
	c.RootCmd = c.newRootCommand()
	return c
}

// NewWithService - CLI поверх готового сервиса, без конфига
func NewWithService(svc TaskService) *CLI {
	return New(func(context.Context, string) (*Backend, error) {
		return &Backend{
			Service: svc,
			NewWatcher: func(notify worker.Notifier, interval *time.Duration) *worker.OverdueWorker {
				return worker.NewOverdueWorker(svc, notify, interval, nil)
			},
		}, nil
	})
}

func (c *CLI) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "tasks",
		Short:         "Личный трекер задач",
		Long:          "tasks - консольный трекер задач с категориями, приоритетами и сроками.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.output != OutputTable && c.output != OutputJSON {
				return service.NewValidationError("output", fmt.Sprintf("неизвестный формат вывода %q, ожидается table или json", c.output))
			}
			if !needsBackend(cmd) {
				return nil
			}
			return c.ensureBackend(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "путь к файлу конфигурации")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", OutputTable, "формат вывода (table, json)")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return service.NewValidationError("flags", err.Error())
	})

	root.AddCommand(
		c.newAddCommand(),
		c.newListCommand(),
		c.newShowCommand(),
		c.newUpdateCommand(),
		c.newDeleteCommand(),
		c.newStartCommand(),
		c.newDoneCommand(),
		c.newStatsCommand(),
		c.newWatchCommand(),
		c.newResetCommand(),
	)

	return root
}

func (c *CLI) ensureBackend(ctx context.Context) error {
	if c.backend != nil {
		return nil
	}
	backend, err := c.connect(ctx, c.configPath)
	if err != nil {
		return err
	}
	c.backend = backend
	return nil
}

// Execute выполняет команду и возвращает код выхода процесса
func (c *CLI) Execute(ctx context.Context) int {
	defer c.close()

	started := time.Now()
	cmd, err := c.RootCmd.ExecuteContextC(ctx)
	if cmd != nil {
		logger.Debug("CLI: Команда выполнена",
			zap.String("command", cmd.CommandPath()),
			zap.Duration("duration", time.Since(started)),
			zap.Bool("success", err == nil))
	}
	return handleError(c.RootCmd.ErrOrStderr(), err)
}

func (c *CLI) close() {
	if c.backend != nil && c.backend.Close != nil {
		c.backend.Close()
	}
	c.backend = nil
}

func (c *CLI) service() TaskService {
	return c.backend.Service
}

func (c *CLI) newWatcher(notify worker.Notifier, interval *time.Duration) *worker.OverdueWorker {
	if c.backend.NewWatcher != nil {
		return c.backend.NewWatcher(notify, interval)
	}
	return worker.NewOverdueWorker(c.service(), notify, interval, nil)
}

func (c *CLI) render(cmd *cobra.Command) renderer {
	return renderer{w: cmd.OutOrStdout(), format: c.output}
}

// справка и автодополнение работают без хранилища
func needsBackend(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		switch cmd.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func argsError(err error) error {
	if err == nil {
		return nil
	}
	return service.NewValidationError("args", err.Error())
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return argsError(cobra.ExactArgs(n)(cmd, args))
	}
}

func minimumArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return argsError(cobra.MinimumNArgs(n)(cmd, args))
	}
}

func noArgs(cmd *cobra.Command, args []string) error {
	return argsError(cobra.NoArgs(cmd, args))
}

func joinTitle(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
