package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileMaxSizeMB  = 100
	logFileMaxBackups = 5
	logFileMaxAgeDays = 14
)

// New инициализирует логгер.
func New(output io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(output)
	l.SetFormatter(new(logrus.JSONFormatter))
	l.SetLevel(logrus.InfoLevel)

	// перезаписываем ряд настроек для окружений отличных от продакшн
	if os.Getenv("GIN_MODE") != "release" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(new(logrus.TextFormatter))
	}

	return l
}

// Output возвращает stdout. Если задан file, логи дополнительно пишутся в файл с ротацией по размеру.
// Второе значение закрывает файл, его нужно вызвать при завершении работы.
func Output(file string) (io.Writer, func() error) {
	if file == "" {
		return os.Stdout, func() error { return nil }
	}
	rotated := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
		MaxAge:     logFileMaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(os.Stdout, rotated), rotated.Close
}
