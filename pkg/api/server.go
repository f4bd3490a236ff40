// Package api provides the REST API server for smfcodec
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/james-see/smfcodec/pkg/converter"
	"github.com/james-see/smfcodec/pkg/sequence"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title smfcodec API
// @version 1.0
// @description API for decoding, dumping and re-encoding Standard MIDI Files
// @host localhost:8080
// @BasePath /api/v1

// maxUpload bounds the size of an uploaded MIDI file
const maxUpload = 8 << 20

type server struct {
	conv   *converter.Converter
	logger *zap.Logger
}

// StartServer starts the API server on the specified port
func StartServer(port int, logger *zap.Logger, opts ...sequence.Option) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := NewRouter(converter.New(logger, opts...), logger)
	logger.Info("api server listening", zap.Int("port", port))
	return r.Run(fmt.Sprintf(":%d", port))
}

// NewRouter wires the API routes around conv
func NewRouter(conv *converter.Converter, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{conv: conv, logger: logger}

	r := gin.Default()
	r.MaxMultipartMemory = maxUpload

	// CORS middleware
	r.Use(corsMiddleware())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/formats", listFormats)
		v1.GET("/commands", listCommands)
		v1.POST("/decode", s.handleDecode)
		v1.POST("/roundtrip", s.handleRoundTrip)
		v1.POST("/convert/midi2syx", s.handleMIDIToSyx)
		v1.POST("/convert/syx2midi", s.handleSyxToMIDI)
		v1.POST("/verify", s.handleVerify)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "smfcodec",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"midi", "json", "yaml", "syx"},
		"conversions": converter.GetSupportedConversions(),
	})
}

type commandInfo struct {
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Args     []string `json:"args"`
	Extended bool     `json:"extended"`
}

// listCommands godoc
// @Summary List registered commands
// @Description Returns the command registry used by the decoder
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]commandInfo
// @Router /api/v1/commands [get]
func listCommands(c *gin.Context) {
	cmds := sequence.Commands()
	out := make([]commandInfo, 0, len(cmds))
	for _, d := range cmds {
		info := commandInfo{Name: d.Name, Extended: d.Extended()}
		if d.Extended() {
			info.Code = fmt.Sprintf("0x%04X", d.Code)
		} else {
			info.Code = fmt.Sprintf("0x%02X", d.Code)
		}
		for _, a := range d.Args {
			info.Args = append(info.Args, a.Name)
		}
		out = append(out, info)
	}
	c.JSON(http.StatusOK, gin.H{"commands": out})
}

// handleDecode godoc
// @Summary Decode a MIDI file
// @Description Upload a MIDI file and receive its event model
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to decode"
// @Param format query string false "json (default) or yaml"
// @Success 200 {object} converter.Document
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/decode [post]
func (s *server) handleDecode(c *gin.Context) {
	data, _, ok := readUpload(c)
	if !ok {
		return
	}

	format := converter.Format(strings.ToLower(c.DefaultQuery("format", "json")))
	if format != converter.FormatJSON && format != converter.FormatYAML {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json or yaml"})
		return
	}

	seq, err := s.conv.Decode(data)
	if err != nil {
		s.fail(c, err)
		return
	}
	doc := converter.NewDocument(seq)
	if format == converter.FormatJSON {
		c.JSON(http.StatusOK, doc)
		return
	}
	out, err := converter.Render(doc, format)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/yaml", out)
}

// handleRoundTrip godoc
// @Summary Re-encode a MIDI file
// @Description Upload a MIDI file and receive it decoded and encoded again
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to re-encode"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/roundtrip [post]
func (s *server) handleRoundTrip(c *gin.Context) {
	s.handleConversion(c, s.conv.RoundTrip, ".mid", "audio/midi")
}

// handleMIDIToSyx godoc
// @Summary Extract SysEx from MIDI
// @Description Upload a MIDI file and receive its SysEx messages as a .syx dump
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true "MIDI file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/midi2syx [post]
func (s *server) handleMIDIToSyx(c *gin.Context) {
	s.handleConversion(c, s.conv.MIDIToSyx, ".syx", "application/octet-stream")
}

// handleSyxToMIDI godoc
// @Summary Convert .syx to MIDI
// @Description Upload a .syx dump and receive a MIDI file holding its messages
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".syx file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/syx2midi [post]
func (s *server) handleSyxToMIDI(c *gin.Context) {
	s.handleConversion(c, s.conv.SyxToMIDI, ".mid", "audio/midi")
}

func (s *server) handleConversion(c *gin.Context, convert func([]byte) ([]byte, error), outputExt, contentType string) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	result, err := convert(data)
	if err != nil {
		s.fail(c, err)
		return
	}

	// Generate output filename
	outputName := strings.TrimSuffix(filename, filepath.Ext(filename))
	if outputName == "" {
		outputName = "converted"
	}
	outputName += outputExt

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName))
	c.Data(http.StatusOK, contentType, result)
}

// handleVerify godoc
// @Summary Verify a MIDI file
// @Description Decode a MIDI file, compare it with a reference parser and check the round trip
// @Tags convert
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to verify"
// @Success 200 {object} converter.Report
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/verify [post]
func (s *server) handleVerify(c *gin.Context) {
	data, _, ok := readUpload(c)
	if !ok {
		return
	}

	report, err := s.conv.Verify(data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	// Get uploaded file
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	// Read file content
	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	if len(data) > maxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		return nil, "", false
	}
	return data, header.Filename, true
}

// fail reports a codec error. Malformed input is the client's problem.
func (s *server) fail(c *gin.Context, err error) {
	s.logger.Warn("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
}
