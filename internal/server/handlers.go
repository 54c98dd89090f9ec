package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/converter"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
)

// =============================================================================
// REQUEST AND RESPONSE BODIES
// =============================================================================

type messageRequest struct {
	Message     string `json:"message"`
	MessageType string `json:"message_type"`
}

type fieldView struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

type sequenceView struct {
	Name     string      `json:"name"`
	Instance int         `json:"instance"`
	Fields   []fieldView `json:"fields"`
}

type messageView struct {
	MessageType string         `json:"message_type"`
	Sender      string         `json:"sender,omitempty"`
	Receiver    string         `json:"receiver,omitempty"`
	Direction   string         `json:"direction,omitempty"`
	Reference   string         `json:"reference,omitempty"`
	UETR        string         `json:"uetr,omitempty"`
	Body        []fieldView    `json:"body"`
	Sequences   []sequenceView `json:"sequences,omitempty"`
}

type violationView struct {
	RuleID   string `json:"rule_id"`
	Code     string `json:"code"`
	Tag      string `json:"tag,omitempty"`
	Value    string `json:"value,omitempty"`
	Message  string `json:"message"`
	Sequence string `json:"sequence,omitempty"`
	Instance int    `json:"instance,omitempty"`
}

type validationView struct {
	Valid        bool            `json:"valid"`
	MessageType  string          `json:"message_type"`
	Reference    string          `json:"reference,omitempty"`
	RulesChecked int             `json:"rules_checked"`
	RulesFailed  int             `json:"rules_failed"`
	Errors       []violationView `json:"errors"`
}

type ruleView struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Description string `json:"description"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) handleParse(c *gin.Context) {
	m, ok := s.parseRequest(c)
	if !ok {
		return
	}
	view, err := newMessageView(m)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleValidate(c *gin.Context) {
	m, ok := s.parseRequest(c)
	if !ok {
		return
	}

	opts := validation.Options{}
	if v := c.Query("stop_on_first_error"); v != "" {
		stop, err := strconv.ParseBool(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stop_on_first_error must be a boolean"})
			return
		}
		opts.StopOnFirstError = stop
	}
	if v := c.Query("disable"); v != "" {
		opts.DisabledRules = strings.Split(v, ",")
	}

	res := s.engine.Check(m, opts)
	view := validationView{
		Valid:        res.Valid(),
		MessageType:  res.MessageType,
		Reference:    res.Reference,
		RulesChecked: res.RulesChecked,
		RulesFailed:  res.RulesFailed,
		Errors:       make([]violationView, 0, len(res.Errors)),
	}
	for _, e := range res.Errors {
		view.Errors = append(view.Errors, violationView{
			RuleID:   e.RuleID,
			Code:     e.Code,
			Tag:      e.Tag,
			Value:    e.Value,
			Message:  e.Message,
			Sequence: e.Sequence,
			Instance: e.Instance,
		})
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleSerialize(c *gin.Context) {
	m, ok := s.parseRequest(c)
	if !ok {
		return
	}
	c.String(http.StatusOK, m.Serialize())
}

func (s *Server) handleRuleTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message_types": message.Types(),
		"rule_sets":     s.engine.Types(),
	})
}

func (s *Server) handleRules(c *gin.Context) {
	mt := message.NormalizeType(c.Param("type"))
	if _, ok := message.Lookup(mt); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unsupported message type %q", mt)})
		return
	}

	rules := s.engine.Rules(mt)
	out := make([]ruleView, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleView{ID: r.ID, Code: r.Code, Description: r.Description})
	}
	c.JSON(http.StatusOK, gin.H{"message_type": mt, "rules": out})
}

// =============================================================================
// HELPERS
// =============================================================================

// parseRequest reads and parses the message of a request. On failure the
// error response is already written.
func (s *Server) parseRequest(c *gin.Context) (*message.Message, bool) {
	req, err := s.readRequest(c)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}

	var m *message.Message
	if req.MessageType != "" {
		m, err = message.ParseAs(req.Message, req.MessageType)
	} else {
		m, err = message.Parse(req.Message)
	}
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return m, true
}

var errEmptyMessage = errors.New("request carries no message")

func (s *Server) readRequest(c *gin.Context) (messageRequest, error) {
	var req messageRequest

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, &types.ConversionError{Format: "json", Op: "decode", Err: err}
		}
	} else {
		data, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return req, err
		}
		req.Message = string(data)
		req.MessageType = c.Query("type")
	}
	req.MessageType = message.NormalizeType(req.MessageType)

	if strings.TrimSpace(req.Message) == "" {
		return req, errEmptyMessage
	}
	return req, nil
}

// fail writes the error response matching err.
func (s *Server) fail(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
	case types.IsConversion(err), errors.Is(err, errEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		if kind, ok := types.KindOf(err); ok {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "kind": kind.String()})
			return
		}
		s.logger.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func newMessageView(m *message.Message) (messageView, error) {
	xm, err := converter.ExportMessage(0, m, nil, nil)
	if err != nil {
		return messageView{}, err
	}

	view := messageView{
		MessageType: m.Type,
		Sender:      xm.Header.Sender,
		Receiver:    xm.Header.Receiver,
		Direction:   xm.Header.Direction,
		Reference:   xm.Header.Reference,
		UETR:        xm.Header.UETR,
		Body:        make([]fieldView, 0, len(xm.Body)),
	}
	for _, f := range xm.Body {
		view.Body = append(view.Body, fieldView{Tag: f.Tag, Value: f.Value})
	}
	for _, seq := range xm.Sequences {
		sv := sequenceView{Name: seq.Name, Instance: seq.Index}
		for _, f := range seq.Fields {
			sv.Fields = append(sv.Fields, fieldView{Tag: f.Tag, Value: f.Value})
		}
		view.Sequences = append(view.Sequences, sv)
	}
	return view, nil
}
