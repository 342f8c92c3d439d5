package utils

import (
	"fmt"

	"floralys_back_end/internal/models"
)

// Libellés français des statuts pour les e-mails clients.
var statusLabels = map[models.OrderStatus]string{
	models.OrderStatusPending:   "En attente de paiement",
	models.OrderStatusVerified:  "Paiement vérifié",
	models.OrderStatusPreparing: "En préparation",
	models.OrderStatusShipped:   "Expédiée",
	models.OrderStatusDelivered: "Livrée",
	models.OrderStatusCancelled: "Annulée",
}

func StatusLabel(s models.OrderStatus) string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande.
func GenerateOrderConfirmationHTML(order models.Order) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td style="padding: 8px; border: 1px solid #ddd;">%s</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%d</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
				<td style="padding: 8px; border: 1px solid #ddd;">%.2f€</td>
			</tr>`, item.ProductName, item.Quantity, item.UnitPrice, item.TotalPrice)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Confirmation de commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #2e7d32;">🌸 Merci pour votre commande !</h2>
		<p>Bonjour,</p>
		<p>Votre commande <strong>%s</strong> a bien été enregistrée.
		Elle sera préparée dès réception et vérification de votre paiement.</p>

		<h3>Détails de la commande</h3>
		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background-color: #f0f0f0;">
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Produit</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Quantité</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Prix unitaire</th>
					<th style="padding: 10px; text-align: left; border: 1px solid #ddd;">Total</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
			<tfoot>
				<tr>
					<td colspan="3" style="padding: 10px; text-align: right; font-weight: bold;">Total:</td>
					<td style="padding: 10px; font-weight: bold;">%.2f€</td>
				</tr>
			</tfoot>
		</table>

		<p>Merci d'indiquer la référence <strong>%s</strong> en communication de votre virement.</p>

		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Floralys</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, itemsHTML, order.TotalAmount, order.OrderNumber)
}

// GenerateStatusUpdateHTML génère le HTML d'un e-mail de changement de statut.
func GenerateStatusUpdateHTML(order models.Order, newStatus models.OrderStatus) string {
	extra := ""
	switch newStatus {
	case models.OrderStatusVerified:
		extra = "<p>Votre paiement a été vérifié. Nous préparons vos fleurs avec soin.</p>"
	case models.OrderStatusShipped:
		extra = "<p>Votre commande est en route ! 🚚</p>"
	case models.OrderStatusDelivered:
		extra = "<p>Votre commande a été livrée. Nous espérons qu'elle vous plaît !</p>"
	case models.OrderStatusCancelled:
		extra = "<p>Votre commande a été annulée. Contactez-nous pour toute question.</p>"
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head>
	<meta charset="UTF-8">
	<title>Mise à jour de votre commande</title>
</head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
	<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
		<h2 style="color: #2e7d32;">Mise à jour de votre commande %s</h2>
		<p>Bonjour,</p>
		<p>Le statut de votre commande est maintenant : <strong>%s</strong>.</p>
		%s
		<p style="margin-top: 30px; color: #555;">
			Cordialement,<br>
			<strong>L'équipe Floralys</strong>
		</p>
	</div>
</body>
</html>`, order.OrderNumber, StatusLabel(newStatus), extra)
}
