package notifier

import (
	"log"

	"floralys_back_end/internal/models"
	"floralys_back_end/internal/utils"
)

type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
)

// Event est émis par les services APRÈS le commit de la transaction :
// le cœur transactionnel ne dépend jamais du succès d'un e-mail.
type Event struct {
	Type      EventType
	Order     models.Order
	Email     string
	NewStatus models.OrderStatus
}

// Sender est implémenté par utils.Mailer ; l'interface permet de
// tester le notifier sans SMTP.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

// Notifier consomme les événements de domaine et tente les envois
// d'e-mails en best-effort : tout échec est loggé, jamais propagé.
type Notifier struct {
	mailer Sender
	events chan Event
	done   chan struct{}
}

func New(mailer Sender) *Notifier {
	return &Notifier{
		mailer: mailer,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
}

// Start lance le consommateur. À appeler une seule fois depuis main.
func (n *Notifier) Start() {
	go func() {
		defer close(n.done)
		for evt := range n.events {
			n.handle(evt)
		}
	}()
	log.Println("✅ Notifier démarré")
}

// Publish dépose un événement sans jamais bloquer la requête appelante.
// Si la file est pleine, l'événement est abandonné (et loggé) : un e-mail
// perdu vaut mieux qu'une commande bloquée.
func (n *Notifier) Publish(evt Event) {
	select {
	case n.events <- evt:
	default:
		log.Printf("⚠️ File de notifications pleine — événement %s abandonné (commande %s)",
			evt.Type, evt.Order.OrderNumber)
	}
}

// Close vide la file puis arrête le consommateur.
func (n *Notifier) Close() {
	close(n.events)
	<-n.done
}

func (n *Notifier) handle(evt Event) {
	if evt.Email == "" {
		log.Printf("⚠️ Pas d'adresse e-mail pour la commande %s — notification ignorée", evt.Order.OrderNumber)
		return
	}

	var subject, body string
	switch evt.Type {
	case EventOrderCreated:
		subject = "Confirmation de votre commande Floralys"
		body = utils.GenerateOrderConfirmationHTML(evt.Order)
	case EventOrderStatusChanged:
		subject = "Mise à jour de votre commande " + evt.Order.OrderNumber
		body = utils.GenerateStatusUpdateHTML(evt.Order, evt.NewStatus)
	default:
		return
	}

	if err := n.mailer.Send(evt.Email, subject, body); err != nil {
		log.Printf("❌ Erreur envoi e-mail (%s, commande %s): %v", evt.Type, evt.Order.OrderNumber, err)
		return
	}
	log.Printf("📧 E-mail %s envoyé à %s (commande %s)", evt.Type, evt.Email, evt.Order.OrderNumber)
}
