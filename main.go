package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/jessevdk/go-flags"
)

type Options struct {
	Output     string  `short:"o" long:"output" description:"Имя выходного PNG-файла"`
	BlockSize  float32 `short:"b" long:"block" description:"Размер блока" default:"1"`
	Scale      int     `short:"x" long:"scale" description:"Масштаб результата" default:"1"`
	Levels     int     `short:"p" long:"posterize" description:"Число уровней на канал"`
	ACT        string  `short:"a" long:"act" description:"Палитра Adobe Color Table"`
	Outline    bool    `short:"l" long:"outline" description:"Чёрный контур"`
	Threshold  uint    `short:"n" long:"normalize" description:"Порог слияния цветов"`
	AutoAdjust bool    `short:"u" long:"auto-adjust" description:"Подогнать размер блока под ширину"`
	SampleSize int     `short:"s" long:"sample" description:"Размер окна усреднения" default:"1"`
	Width      int     `short:"w" long:"width" description:"Целевая ширина"`
	Height     int     `short:"h" long:"height" description:"Целевая высота"`
	Margin     int     `short:"m" long:"margin" description:"Прозрачная рамка"`
	Colors     int     `short:"k" long:"colors" description:"Подобрать палитру из N цветов"`
	Method     string  `long:"palette-method" description:"Способ подбора палитры" choice:"kmeans" choice:"dominantcolor" choice:"frequency" default:"kmeans"`
	Show       bool    `long:"show" description:"Показать исходник и результат"`
	Verbose    bool    `long:"verbose" description:"Подробный журнал"`
	Version    bool    `long:"version" description:"Показать версию и выйти"`
	Help       bool    `long:"help" description:"Показать справку"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// normalizeArgs переводит однодефисные -help и -version в длинные опции.
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		switch a {
		case "-help":
			a = "--help"
		case "-version":
			a = "--version"
		}
		out[i] = a
	}
	return out
}

// DefaultOutput строит имя <вход-без-расширения>@<масштаб>x.png.
func DefaultOutput(input string, scale int) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "@" + strconv.Itoa(max(scale, 1)) + "x.png"
}

func run(args []string, stdout io.Writer) int {
	var opts Options

	parser := flags.NewParser(&opts, flags.PassDoubleDash)
	rest, err := parser.ParseArgs(normalizeArgs(args))
	if opts.Help {
		printHelp(stdout)
		return 0
	}
	if opts.Version {
		printVersion(stdout)
		return 0
	}
	// Неизвестная опция или нехватка аргументов — подсказка и код 0.
	if err != nil || len(rest) == 0 {
		fmt.Fprint(stdout, usageHint)
		return 0
	}

	printInfo(stdout)

	inputFile := rest[len(rest)-1]
	if _, err := os.Stat(inputFile); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(stdout, "Error: File '%s' not found.\n", inputFile)
		return 1
	}

	outputFile := opts.Output
	if outputFile == "" || outputFile == inputFile {
		outputFile = DefaultOutput(inputFile, opts.Scale)
	}

	method, err := ParsePaletteMethod(opts.Method)
	if err != nil {
		fmt.Fprint(stdout, usageHint)
		return 0
	}

	settings := Settings{
		BlockSize:     opts.BlockSize,
		SampleSize:    opts.SampleSize,
		Width:         opts.Width,
		Height:        opts.Height,
		Margin:        opts.Margin,
		Scale:         opts.Scale,
		AutoAdjust:    opts.AutoAdjust,
		Levels:        opts.Levels,
		Threshold:     opts.Threshold,
		PaletteColors: opts.Colors,
		PaletteMethod: method,
		Outline:       opts.Outline,
		Verbose:       opts.Verbose,
	}
	if opts.ACT != "" {
		ct, err := LoadAdobeColorTable(opts.ACT)
		if err != nil {
			log.Printf("Ошибка загрузки палитры: %v", err)
			return 1
		}
		settings.Palette = ct
	}

	source, result, err := convert(inputFile, outputFile, settings)
	if err != nil {
		log.Printf("Ошибка в конвейере: %v", err)
		return 1
	}
	fmt.Fprintf(stdout, "PNG file saved successfully: %s\n", outputFile)

	if opts.Show {
		if err := Preview(source, result); err != nil {
			log.Printf("Ошибка превью: %v", err)
		}
	}
	return 0
}

// convert прогоняет файл через конвейер загрузка → обработка → сохранение.
// Файл пишется только если все этапы прошли успешно.
func convert(inputFile, outputFile string, settings Settings) (source, result *ImageData, err error) {
	loadedCh := make(chan *ImageData)
	processedCh := make(chan *ImageData)
	errCh := make(chan error, 3)
	done := make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		defer close(loadedCh)
		img, err := LoadImage(inputFile)
		if err != nil {
			errCh <- err
			return
		}
		source = img
		loadedCh <- img
	}()

	go func() {
		defer wg.Done()
		defer close(processedCh)
		for img := range loadedCh {
			out, err := Process(img, settings)
			if err != nil {
				errCh <- err
				return
			}
			processedCh <- out
		}
	}()

	go func() {
		defer wg.Done()
		for img := range processedCh {
			if err := SavePNG(outputFile, img); err != nil {
				errCh <- err
				return
			}
			result = img
			done <- struct{}{}
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, nil, err
	case <-done:
		if settings.Verbose {
			log.Println("Файл успешно записан:", outputFile)
		}
		return source, result, nil
	}
}
