package notify

// Both templates are self-contained HTML documents with inlined styles so
// they render without external assets in mail clients.

const sharedStyles = `
    body {
      font-family: 'Arial', sans-serif;
      line-height: 1.6;
      color: #333333;
      margin: 0;
      padding: 0;
      background-color: #f9f9f9;
    }
    .container {
      max-width: 600px;
      margin: 0 auto;
      padding: 20px;
    }
    .header {
      background-color: #0063F7;
      padding: 30px 20px;
      text-align: center;
      border-radius: 16px 16px 0 0;
    }
    .header h1 {
      color: #ffffff;
      margin: 0;
      font-size: 28px;
    }
    .header p {
      color: rgba(255, 255, 255, 0.9);
      margin: 5px 0 0;
      font-size: 16px;
    }
    .content {
      background-color: #ffffff;
      padding: 30px;
      border-radius: 0 0 16px 16px;
      box-shadow: 0 4px 20px rgba(0, 0, 0, 0.1);
    }
    .title {
      color: #0063F7;
      text-align: center;
      font-size: 24px;
      margin-bottom: 25px;
    }
    .footer {
      text-align: center;
      color: #999999;
      font-size: 12px;
      margin-top: 30px;
    }`

const operatorTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Novo Pagamento Recebido - {{ brand }}</title>
  <style>` + sharedStyles + `
    .data-table {
      width: 100%;
      border-collapse: collapse;
      margin: 20px 0;
    }
    .data-table th {
      background-color: #0063F7;
      color: white;
      padding: 10px;
      text-align: left;
    }
    .data-table td {
      padding: 10px;
      border-bottom: 1px solid #eeeeee;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{ brand }}</h1>
      <p>Pagamento via link</p>
    </div>

    <div class="content">
      <h2 class="title">Novo Pagamento Recebido</h2>

      <p>Um novo pagamento foi submetido através do sistema de links. Seguem os detalhes:</p>

      <table class="data-table">
        <tr>
          <th colspan="2">Dados do Cliente</th>
        </tr>
        <tr>
          <td><strong>Nome:</strong></td>
          <td>{{ nome | escape }}</td>
        </tr>
        <tr>
          <td><strong>E-mail:</strong></td>
          <td>{{ email | escape }}</td>
        </tr>
        <tr>
          <td><strong>Telefone:</strong></td>
          <td>{{ telefone | escape }}</td>
        </tr>
        <tr>
          <td><strong>ID do Link:</strong></td>
          <td>{{ link_id | escape }}</td>
        </tr>
        <tr>
          <td><strong>Data/Hora:</strong></td>
          <td>{{ timestamp | escape }}</td>
        </tr>
      </table>

      <p><strong>Documentos anexados:</strong></p>
      <p>1. Foto do documento</p>
      <p>2. Selfie com documento</p>

      <div class="footer">
        <p>© {{ year }} {{ brand }}. Todos os direitos reservados.</p>
      </div>
    </div>
  </div>
</body>
</html>
`

const submitterTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta name="x-apple-disable-message-reformatting">
  <meta http-equiv="Content-Type" content="text/html; charset=UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Pagamento em Processamento - {{ brand }}</title>
  <style>` + sharedStyles + `
    .divider {
      border-top: 1px solid #eeeeee;
      margin: 25px 0;
    }
    .highlight-box {
      background-color: #f5f9ff;
      border-left: 4px solid #0063F7;
      padding: 15px;
      margin: 20px 0;
      border-radius: 0 8px 8px 0;
    }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>{{ brand }}</h1>
      <p>Pagamento via link</p>
    </div>

    <div class="content">
      <h2 class="title">Pagamento em Processamento</h2>

      <p>Olá, {{ nome | escape }}!</p>

      <p>Recebemos seu pagamento e ele está sendo processado pela nossa equipe. Você receberá uma confirmação assim que o processo for concluído.</p>

      <div class="highlight-box">
        <strong>Detalhes do pagamento:</strong>
        <p>ID da transação: {{ link_id | escape }}</p>
        <p>Data: {{ timestamp | escape }}</p>
      </div>

      <div class="divider"></div>

      <p>Caso tenha alguma dúvida, entre em contato conosco respondendo este e-mail ou através dos nossos canais de atendimento.</p>

      <p>Atenciosamente,<br>
      <strong>Equipe {{ brand }}</strong></p>

      <div class="footer">
        <p>© {{ year }} {{ brand }}. Todos os direitos reservados.</p>
        <p>
          <a href="#" style="color: #999999; text-decoration: none;">Política de Privacidade</a> |
          <a href="#" style="color: #999999; text-decoration: none;">Termos de Serviço</a>
        </p>
      </div>
    </div>
  </div>
</body>
</html>
`
