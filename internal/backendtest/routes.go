package backendtest

import (
	"io"
	"math"
	"path"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"trackflow/internal/model"
)

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Get("/leads", s.listLeads)
	api.Post("/leads", s.createLead)
	api.Put("/leads/:id<int>", s.updateLead)
	api.Delete("/leads/:id<int>", s.deleteLead)

	api.Get("/orders", s.listOrders)
	api.Post("/orders", s.createOrder)
	api.Put("/orders/:id<int>", s.updateOrder)
	api.Delete("/orders/:id<int>", s.deleteOrder)

	api.Get("/reminders", s.listReminders)
	api.Post("/reminders", s.createReminder)
	api.Put("/reminders/:id<int>", s.updateReminder)
	api.Delete("/reminders/:id<int>", s.deleteReminder)

	api.Get("/dashboard", s.dashboard)

	api.Post("/upload/:type/:id<int>", s.upload)
	api.Get("/documents/:type/:id<int>", s.listDocuments)
	api.Delete("/documents/:id<int>", s.deleteDocument)

	s.app.Get("/uploads/:filename", s.serveUpload)
}

func idParam(c *fiber.Ctx) int64 {
	id, _ := c.ParamsInt("id")
	return int64(id)
}

func now() *model.Timestamp {
	return model.TimestampPtr(time.Now())
}

func message(c *fiber.Ctx, msg string) error {
	return c.JSON(fiber.Map{"message": msg})
}

func (s *Server) listLeads(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(append([]model.Lead{}, s.leads...))
}

func (s *Server) createLead(c *fiber.Ctx) error {
	var p model.LeadPayload
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "invalid lead payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	l := model.Lead{
		ID:              s.newID(),
		Name:            p.Name,
		Contact:         p.Contact,
		Company:         p.Company,
		ProductInterest: p.ProductInterest,
		Stage:           p.Stage,
		FollowUpDate:    p.FollowUpDate,
		Notes:           p.Notes,
		CreatedAt:       now(),
	}
	if l.Stage == "" {
		l.Stage = model.LeadNew
	}
	s.leads = append(s.leads, l)
	if l.Stage == model.LeadWon {
		s.autoOrder(l.ID)
	}
	return c.JSON(l)
}

func (s *Server) updateLead(c *fiber.Ctx) error {
	var p model.LeadPayload
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "invalid lead payload")
	}
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.leads {
		if s.leads[i].ID != id {
			continue
		}
		l := &s.leads[i]
		l.Name = p.Name
		l.Contact = p.Contact
		l.Company = p.Company
		l.ProductInterest = p.ProductInterest
		l.Stage = p.Stage
		l.FollowUpDate = p.FollowUpDate
		l.Notes = p.Notes
		l.UpdatedAt = now()
		if l.Stage == model.LeadWon && !s.hasOrder(id) {
			s.autoOrder(id)
		}
		return c.JSON(*l)
	}
	return writeError(c, fiber.StatusNotFound, "Lead not found")
}

func (s *Server) deleteLead(c *fiber.Ctx) error {
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, l := range s.leads {
		if l.ID == id {
			s.leads = append(s.leads[:i], s.leads[i+1:]...)
			return message(c, "Lead deleted successfully")
		}
	}
	return writeError(c, fiber.StatusNotFound, "Lead not found")
}

// autoOrder and hasOrder must be called with mu held.
func (s *Server) autoOrder(leadID int64) {
	s.orders = append(s.orders, model.Order{
		ID:        s.newID(),
		LeadID:    leadID,
		Stage:     model.OrderReceived,
		CreatedAt: now(),
	})
}

func (s *Server) hasOrder(leadID int64) bool {
	for _, o := range s.orders {
		if o.LeadID == leadID {
			return true
		}
	}
	return false
}

func (s *Server) hasLead(id int64) bool {
	for _, l := range s.leads {
		if l.ID == id {
			return true
		}
	}
	return false
}

func (s *Server) ownerExists(o model.Owner) bool {
	if o.Type == model.OwnerLead {
		return s.hasLead(o.ID)
	}
	for _, order := range s.orders {
		if order.ID == o.ID {
			return true
		}
	}
	return false
}

func (s *Server) listOrders(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(append([]model.Order{}, s.orders...))
}

func (s *Server) createOrder(c *fiber.Ctx) error {
	var p model.OrderPayload
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "invalid order payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasLead(p.LeadID) {
		return writeError(c, fiber.StatusNotFound, "Lead not found")
	}
	o := model.Order{
		ID:             s.newID(),
		LeadID:         p.LeadID,
		Stage:          p.Stage,
		Courier:        p.Courier,
		TrackingNumber: p.TrackingNumber,
		DispatchDate:   p.DispatchDate,
		Notes:          p.Notes,
		CreatedAt:      now(),
	}
	if o.Stage == "" {
		o.Stage = model.OrderReceived
	}
	s.orders = append(s.orders, o)
	return c.JSON(o)
}

// orderPatch mirrors the backend's update model where absent or null fields are left untouched.
type orderPatch struct {
	Stage          *model.OrderStage `json:"stage"`
	Courier        *string           `json:"courier"`
	TrackingNumber *string           `json:"tracking_number"`
	DispatchDate   *model.Timestamp  `json:"dispatch_date"`
	Notes          *string           `json:"notes"`
}

func (s *Server) updateOrder(c *fiber.Ctx) error {
	var p orderPatch
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "invalid order payload")
	}
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].ID != id {
			continue
		}
		o := &s.orders[i]
		if p.Stage != nil {
			o.Stage = *p.Stage
		}
		if p.Courier != nil {
			o.Courier = p.Courier
		}
		if p.TrackingNumber != nil {
			o.TrackingNumber = p.TrackingNumber
		}
		if p.DispatchDate != nil && !p.DispatchDate.IsZero() {
			o.DispatchDate = p.DispatchDate
		}
		if p.Notes != nil {
			o.Notes = p.Notes
		}
		o.UpdatedAt = now()
		return c.JSON(*o)
	}
	return writeError(c, fiber.StatusNotFound, "Order not found")
}

func (s *Server) deleteOrder(c *fiber.Ctx) error {
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return message(c, "Order deleted successfully")
		}
	}
	return writeError(c, fiber.StatusNotFound, "Order not found")
}

func (s *Server) listReminders(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(append([]model.Reminder{}, s.reminders...))
}

func (s *Server) createReminder(c *fiber.Ctx) error {
	var p model.ReminderPayload
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "invalid reminder payload")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	r := model.Reminder{
		ID:           s.newID(),
		Title:        p.Title,
		Description:  p.Description,
		ReminderDate: p.ReminderDate,
		IsCompleted:  p.IsCompleted,
		CreatedAt:    now(),
	}
	s.reminders = append(s.reminders, r)
	return c.JSON(r)
}

type reminderPatch struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	ReminderDate *model.Timestamp `json:"reminder_date"`
	IsCompleted  *bool            `json:"is_completed"`
}

func (s *Server) updateReminder(c *fiber.Ctx) error {
	var p reminderPatch
	if err := c.BodyParser(&p); err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "invalid reminder payload")
	}
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID != id {
			continue
		}
		r := &s.reminders[i]
		if p.Title != nil {
			r.Title = *p.Title
		}
		if p.Description != nil {
			r.Description = p.Description
		}
		if p.ReminderDate != nil && !p.ReminderDate.IsZero() {
			r.ReminderDate = *p.ReminderDate
		}
		if p.IsCompleted != nil {
			r.IsCompleted = *p.IsCompleted
		}
		return c.JSON(*r)
	}
	return writeError(c, fiber.StatusNotFound, "Reminder not found")
}

func (s *Server) deleteReminder(c *fiber.Ctx) error {
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.reminders {
		if r.ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return message(c, "Reminder deleted successfully")
		}
	}
	return writeError(c, fiber.StatusNotFound, "Reminder not found")
}

func (s *Server) dashboard(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var d model.DashboardStats
	d.TotalLeads = len(s.leads)
	for _, l := range s.leads {
		switch l.Stage {
		case model.LeadWon:
			d.WonLeads++
		case model.LeadLost:
			d.LostLeads++
		default:
			d.OpenLeads++
		}
	}
	if d.TotalLeads > 0 {
		rate := float64(d.WonLeads) / float64(d.TotalLeads) * 100
		d.ConversionRate = math.Round(rate*100) / 100
	}
	for _, o := range s.orders {
		switch o.Stage {
		case model.OrderReceived:
			d.OrdersReceived++
		case model.OrderInDevelopment:
			d.OrdersInDevelopment++
		case model.OrderReadyToDispatch:
			d.OrdersReadyToDispatch++
		case model.OrderDispatched:
			d.OrdersDispatched++
		}
	}
	t := time.Now()
	for _, r := range s.reminders {
		if !r.IsCompleted && !r.ReminderDate.After(t) {
			d.PendingReminders++
		}
	}
	return c.JSON(d)
}

func validOwner(c *fiber.Ctx) (model.Owner, bool) {
	owner := model.Owner{Type: model.OwnerType(c.Params("type")), ID: idParam(c)}
	return owner, owner.Type.Valid()
}

func (s *Server) upload(c *fiber.Ctx) error {
	owner, ok := validOwner(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "Invalid entity type")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fiber.StatusUnprocessableEntity, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "cannot open uploaded file")
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return writeError(c, fiber.StatusInternalServerError, "cannot read uploaded file")
	}

	ext := strings.TrimPrefix(path.Ext(fh.Filename), ".")
	stored := string(owner.Type) + "_" + uuid.NewString()
	if ext != "" {
		stored += "." + ext
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := model.Document{
		ID:         s.newID(),
		Filename:   fh.Filename,
		FilePath:   "uploads/" + stored,
		UploadedAt: model.NewTimestamp(time.Now()),
		Owner:      owner,
	}
	s.documents = append(s.documents, storedDocument{doc: doc, content: content})

	return c.JSON(fiber.Map{
		"message":     "File uploaded successfully",
		"id":          doc.ID,
		"filename":    doc.Filename,
		"file_path":   doc.FilePath,
		"uploaded_at": doc.UploadedAt,
	})
}

func (s *Server) listDocuments(c *fiber.Ctx) error {
	owner, ok := validOwner(c)
	if !ok {
		return writeError(c, fiber.StatusBadRequest, "Invalid entity type")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ownerExists(owner) {
		return writeError(c, fiber.StatusNotFound, "Not Found")
	}
	out := make([]model.Document, 0)
	for _, d := range s.documents {
		if d.doc.Owner == owner {
			out = append(out, d.doc)
		}
	}
	return c.JSON(out)
}

func (s *Server) deleteDocument(c *fiber.Ctx) error {
	id := idParam(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, d := range s.documents {
		if d.doc.ID == id {
			s.documents = append(s.documents[:i], s.documents[i+1:]...)
			return message(c, "Document deleted successfully")
		}
	}
	return writeError(c, fiber.StatusNotFound, "Document not found")
}

func (s *Server) serveUpload(c *fiber.Ctx) error {
	name := c.Params("filename")
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.documents {
		if path.Base(d.doc.FilePath) == name {
			return c.Send(d.content)
		}
	}
	return writeError(c, fiber.StatusNotFound, "Not Found")
}
