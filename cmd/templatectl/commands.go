package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/opsdesk-backend/internal/app"
	types "github.com/yungbote/opsdesk-backend/internal/domain"
	"github.com/yungbote/opsdesk-backend/internal/modules/templating"
	"github.com/yungbote/opsdesk-backend/internal/services"
)

func newExpandCmd() *cobra.Command {
	var tpl, data string
	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand {{field}} tokens in a template against JSON data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := parseData(data)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), templating.Expand(tpl, ctx))
			return nil
		},
	}
	cmd.Flags().StringVar(&tpl, "template", "", "template text")
	cmd.Flags().StringVar(&data, "data", "", "JSON object of field values")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newPromptCmd() *cobra.Command {
	var module, promptType, data, custom string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Generate an AI prompt for a module record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := parseData(data)
			if err != nil {
				return err
			}
			return withApp(func(a *app.App) error {
				res, err := a.Services.Templates.GeneratePrompt(cmd.Context(), module, services.PromptRequest{
					Data:         ctx,
					PromptType:   promptType,
					CustomPrompt: custom,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "module name")
	cmd.Flags().StringVar(&promptType, "type", "summary", "summary|analysis|suggestion")
	cmd.Flags().StringVar(&data, "data", "", "JSON object of field values")
	cmd.Flags().StringVar(&custom, "custom", "", "custom prompt template")
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func newNotifyCmd() *cobra.Command {
	var module, channel, data, webhook string
	var recipients []string
	var send bool
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Preview a module notification, or deliver it with --send",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := parseData(data)
			if err != nil {
				return err
			}
			if !send {
				res, err := services.BuildNotificationPreview(module, ctx, channel)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			}
			return withApp(func(a *app.App) error {
				results := a.Services.Notifications.SendBulk(cmd.Context(), types.NotificationJob{
					Module: module,
					Data:   ctx,
					Configs: []types.DeliveryConfig{{
						Channel:    channel,
						Recipients: recipients,
						WebhookURL: webhook,
					}},
				})
				return printJSON(cmd, results)
			})
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "module name")
	cmd.Flags().StringVar(&channel, "channel", "slack", "slack|email|sms")
	cmd.Flags().StringVar(&data, "data", "", "JSON object of field values")
	cmd.Flags().BoolVar(&send, "send", false, "deliver instead of previewing")
	cmd.Flags().StringSliceVar(&recipients, "to", nil, "email addresses or phone numbers")
	cmd.Flags().StringVar(&webhook, "webhook-url", "", "slack webhook overriding SLACK_WEBHOOK_URL")
	_ = cmd.MarkFlagRequired("module")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var module, tpl string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Report template tokens the module does not declare",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app.App) error {
				res, err := a.Services.Templates.ValidateTemplate(cmd.Context(), tpl, module)
				if err != nil {
					return err
				}
				return printJSON(cmd, res)
			})
		},
	}
	cmd.Flags().StringVar(&module, "module", "", "module name")
	cmd.Flags().StringVar(&tpl, "template", "", "template text")
	_ = cmd.MarkFlagRequired("module")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Upsert field definitions and templates from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := loadSeedFile(file)
			if err != nil {
				return err
			}
			fields, err := seed.fieldDefinitions()
			if err != nil {
				return err
			}
			tpls := seed.moduleTemplates()
			return withApp(func(a *app.App) error {
				if err := a.Services.TemplateAdmin.Seed(cmd.Context(), fields, tpls); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d fields, %d templates\n", len(fields), len(tpls))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "seed.yaml", "seed file")
	return cmd
}
