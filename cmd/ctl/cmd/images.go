package cmd

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/a1x007/Qr-Scanner/internal/imageio"
	"github.com/a1x007/Qr-Scanner/internal/pipeline"
	"github.com/a1x007/Qr-Scanner/internal/qrsource"
)

// NewQRCmd renders a plain QR code ready for combine.
func NewQRCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qr TEXT",
		Short: "render a QR code at 3px per module",
		Long:  "render a QR code at 3px per module with a 12px quiet zone, the geometry combine expects",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, _ := cmd.Flags().GetString("version")
			version, _, err := parseVersion(v)
			if err != nil {
				return err
			}
			code, err := qrsource.FromText(args[0], version)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("output")
			if err := imageio.Save(out, code.Image); err != nil {
				return err
			}
			slog.InfoContext(ctx, "wrote qr code", "path", out, "version", code.Version)
			return nil
		},
	}
	pf := cmd.Flags()
	pf.StringP("output", "o", "qrcode.png", "output file")
	pf.String("version", "auto", "QR version (auto|1-40)")
	return cmd
}

// NewCombineCmd decorates a QR code with a background.
func NewCombineCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "combine",
		Short: "decorate a QR code with an image or animation",
		Long:  "decorate the data modules of a QR code with a halftoned or binarized background",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := styleOptions(cmd)
			if err != nil {
				return err
			}
			qrPath, _ := cmd.Flags().GetString("qr")
			text, _ := cmd.Flags().GetString("text")
			bgPath, _ := cmd.Flags().GetString("background")
			out, _ := cmd.Flags().GetString("output")
			if bgPath == "" || (qrPath == "" && text == "") {
				return fmt.Errorf("--background and one of --qr or --text are required")
			}

			var written string
			if qrPath != "" {
				written, err = pipeline.CombineFiles(ctx, qrPath, bgPath, out, opts)
			} else {
				var code qrsource.Code
				if code, err = qrsource.FromText(text, opts.Version); err != nil {
					return err
				}
				if opts.Version == nil && opts.DetectVersion {
					opts.Version = &code.Version
				}
				written, err = pipeline.CombineImage(ctx, code.Image, bgPath, out, opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}
	addStyleFlags(cmd)
	pf := cmd.Flags()
	pf.String("qr", "", "QR code image (3px modules, 12px quiet zone)")
	pf.String("text", "", "render the QR code from this text instead of --qr")
	pf.StringP("background", "b", "", "background image or animation")
	pf.StringP("output", "o", "", "output file, defaults to "+pipeline.DefaultCombinedName+" beside the background")
	return cmd
}

// NewConvertCmd halftones or binarizes an image or animation.
func NewConvertCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert INPUT OUTPUT",
		Short: "halftone or binarize an image or animation",
		Long:  "halftone or binarize an image; GIF and APNG inputs are processed frame by frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := styleOptions(cmd)
			if err != nil {
				return err
			}
			return pipeline.ConvertFile(ctx, args[0], args[1], opts)
		},
	}
	addStyleFlags(cmd)
	return cmd
}

// NewOverlayCmd stamps a QR code onto a background.
func NewOverlayCmd(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay BACKGROUND QR OUTPUT",
		Short: "stamp a QR code onto an image",
		Long:  "keep the dark pixels of QR and show BACKGROUND (resized to the QR) everywhere else",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := styleOptions(cmd)
			if err != nil {
				return err
			}
			at, _ := cmd.Flags().GetIntSlice("at")
			if len(at) == 0 {
				return pipeline.OverlayFiles(ctx, args[0], args[1], args[2], opts)
			}
			if len(at) != 2 {
				return fmt.Errorf("--at takes x,y")
			}
			opacity, _ := cmd.Flags().GetUint8("opacity")
			return pipeline.PasteFiles(ctx, args[0], args[1], args[2], image.Pt(at[0], at[1]), opacity, opts)
		},
	}
	addStyleFlags(cmd)
	pf := cmd.Flags()
	pf.IntSlice("at", nil, "paste the whole QR at x,y instead of blending")
	pf.Uint8("opacity", 255, "opacity used with --at (0-255)")
	return cmd
}
