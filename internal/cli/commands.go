package cli

import (
	"context"
	"time"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *CLI) newAddCommand() *cobra.Command {
	var (
		description string
		category    string
		priority    string
		due         string
	)

	cmd := &cobra.Command{
		Use:     "add <title...>",
		Short:   "Добавить задачу",
		Example: `  tasks add "Купить молоко" -c personal -p low --due 2026-01-31`,
		Args:    minimumArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := parseCategory(category)
			if err != nil {
				return err
			}
			prio, err := parsePriority(priority)
			if err != nil {
				return err
			}
			var dueDate *task.Date
			if cmd.Flags().Changed("due") {
				if dueDate, err = parseDue(due); err != nil {
					return err
				}
			}

			created, err := c.service().CreateTask(cmd.Context(), joinTitle(args), description, cat, prio, dueDate)
			if err != nil {
				if created != nil {
					logger.Warn("CLI: Задача создана, но не сохранена", zap.Int("id", created.ID))
				}
				return err
			}

			r := c.render(cmd)
			r.message("Задача #%d создана", created.ID)
			return r.task(created)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "описание")
	cmd.Flags().StringVarP(&category, "category", "c", string(task.CategoryOther), "категория (work, personal, study, health, other)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "приоритет (high, medium, low)")
	cmd.Flags().StringVar(&due, "due", "", "срок в формате ГГГГ-ММ-ДД")
	return cmd
}

func (c *CLI) newListCommand() *cobra.Command {
	var (
		status   string
		category string
		priority string
		overdue  bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Показать задачи",
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc := c.service()

			var (
				tasks []task.Task
				err   error
			)
			switch {
			case cmd.Flags().Changed("status"):
				var st task.Status
				if st, err = parseStatus(status); err != nil {
					return err
				}
				tasks, err = svc.GetTasksByStatus(ctx, st)
			case cmd.Flags().Changed("category"):
				var cat task.Category
				if cat, err = parseCategory(category); err != nil {
					return err
				}
				tasks, err = svc.GetTasksByCategory(ctx, cat)
			case cmd.Flags().Changed("priority"):
				var prio task.Priority
				if prio, err = parsePriority(priority); err != nil {
					return err
				}
				tasks, err = svc.GetTasksByPriority(ctx, prio)
			case overdue:
				tasks = svc.GetOverdueTasks(ctx)
			default:
				tasks = svc.GetAllTasks(ctx)
			}
			if err != nil {
				return err
			}

			return c.render(cmd).taskList(tasks, overdueIDs(svc.GetOverdueTasks(ctx)))
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "фильтр по статусу (pending, in_progress, completed)")
	cmd.Flags().StringVarP(&category, "category", "c", "", "фильтр по категории")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "фильтр по приоритету")
	cmd.Flags().BoolVar(&overdue, "overdue", false, "только просроченные")
	cmd.MarkFlagsMutuallyExclusive("status", "category", "priority", "overdue")
	return cmd
}

func (c *CLI) newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Показать задачу",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := c.service().GetTaskByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.render(cmd).task(t)
		},
	}
}

func (c *CLI) newUpdateCommand() *cobra.Command {
	var (
		title       string
		description string
		category    string
		priority    string
		due         string
		clearDue    bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить поля задачи",
		Long:  "Меняются только переданные флаги, остальные поля остаются как были.",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			var options []task.TaskOption
			if flags.Changed("title") {
				options = append(options, task.WithTitle(title))
			}
			if flags.Changed("description") {
				options = append(options, task.WithDescription(description))
			}
			if flags.Changed("category") {
				cat, err := parseCategory(category)
				if err != nil {
					return err
				}
				options = append(options, task.WithCategory(cat))
			}
			if flags.Changed("priority") {
				prio, err := parsePriority(priority)
				if err != nil {
					return err
				}
				options = append(options, task.WithPriority(prio))
			}
			if flags.Changed("due") {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				options = append(options, task.WithDueDate(*d))
			}
			if clearDue {
				options = append(options, task.WithoutDueDate())
			}

			if len(options) == 0 {
				return service.NewValidationError("flags", "не указано ни одного поля для изменения")
			}

			updated, err := c.service().UpdateTask(cmd.Context(), id, options...)
			if err != nil {
				return err
			}

			r := c.render(cmd)
			r.message("Задача #%d обновлена", updated.ID)
			return r.task(updated)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "новый заголовок")
	cmd.Flags().StringVarP(&description, "description", "d", "", "новое описание")
	cmd.Flags().StringVarP(&category, "category", "c", "", "новая категория")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "новый приоритет")
	cmd.Flags().StringVar(&due, "due", "", "новый срок ГГГГ-ММ-ДД")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "убрать срок")
	cmd.MarkFlagsMutuallyExclusive("due", "clear-due")
	return cmd
}

func (c *CLI) newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Удалить задачу",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.service().DeleteTask(cmd.Context(), id); err != nil {
				return err
			}

			r := c.render(cmd)
			if r.format == OutputJSON {
				return r.json(map[string]any{"deleted": id})
			}
			r.message("Задача #%d удалена", id)
			return nil
		},
	}
}

func (c *CLI) newStartCommand() *cobra.Command {
	return c.transitionCommand("start <id>", "Взять задачу в работу", nil, "Задача #%d в работе",
		func(ctx context.Context, id int) (*task.Task, error) {
			return c.service().StartTask(ctx, id)
		})
}

func (c *CLI) newDoneCommand() *cobra.Command {
	return c.transitionCommand("done <id>", "Завершить задачу", []string{"complete"}, "Задача #%d завершена",
		func(ctx context.Context, id int) (*task.Task, error) {
			return c.service().CompleteTask(ctx, id)
		})
}

func (c *CLI) transitionCommand(use, short string, aliases []string, done string, op func(context.Context, int) (*task.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Aliases: aliases,
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := op(cmd.Context(), id)
			if err != nil {
				return err
			}

			r := c.render(cmd)
			r.message(done, t.ID)
			return r.task(t)
		},
	}
}

func (c *CLI) newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Статистика по задачам",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.render(cmd).statistics(c.service().GetStatistics(cmd.Context()))
		},
	}
}

func (c *CLI) newWatchCommand() *cobra.Command {
	var (
		interval time.Duration
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Периодически напоминать о просроченных задачах",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			r := c.render(cmd)

			var every *time.Duration
			if cmd.Flags().Changed("interval") {
				every = &interval
			}

			w := c.newWatcher(func(_ context.Context, overdue []task.Task) {
				r.message("%s: просрочено задач: %d", time.Now().Format(timeLayout), len(overdue))
				if err := r.taskList(overdue, overdueIDs(overdue)); err != nil {
					logger.Error("CLI: Ошибка вывода просроченных задач", err)
				}
			}, every)

			if once {
				if w.Check(ctx) == 0 {
					if r.format == OutputJSON {
						return r.taskList([]task.Task{}, nil)
					}
					r.message("Просроченных задач нет")
				}
				return nil
			}

			r.message("Проверка каждые %s, Ctrl+C для выхода", w.Interval())
			w.Start(ctx)
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", 0, "интервал проверки (по умолчанию из конфига)")
	cmd.Flags().BoolVar(&once, "once", false, "проверить один раз и выйти")
	return cmd
}

func (c *CLI) newResetCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Удалить все задачи",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return service.NewValidationError("force", "сброс удаляет все задачи, подтвердите флагом --force")
			}
			if err := c.service().Reset(cmd.Context()); err != nil {
				return err
			}
			c.render(cmd).message("Все задачи удалены")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "подтвердить удаление")
	return cmd
}

func overdueIDs(tasks []task.Task) map[int]bool {
	ids := make(map[int]bool, len(tasks))
	for _, t := range tasks {
		ids[t.ID] = true
	}
	return ids
}
