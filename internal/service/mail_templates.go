package service

const verificationMailSubject = "Almost There! Verify Your TheBridge Account"

const verificationMailBody = `Hi %s,

Thanks for joining TheBridge — we are glad you´re here!

To finish setting up your account, please use the verification code below:

%s

This verification code is valid for 5 minutes.

Enter the code on our website to verify your account and get started.
If you didn´t request this, you can safely ignore this email.

Welcome aboard,
TheBridge Team`

const welcomeMailSubject = "Welcome to The Bridge – Your AI-Powered Superyacht Knowledge Platform"

const welcomeMailBody = `Hi %s,

Welcome aboard!

Thank you for signing up and joining The Bridge community. We're thrilled to have you as part of the first trusted source of verified insight built exclusively for the superyachting industry.

Your account is now active and ready for use.

If we do not have the answer yet, you have options:
• Ask AI: Get an instant reply from our integrated Open AI feature.
• Ask a Specialist: Connect with one of our industry specialists via email and receive a reply in your inbox.
• Ask an Ambassador: Get in touch with a fellow captain or crew member who will send a reply to your inbox.

Please allow them some time to reply.
We look forward to seeing you on The Bridge!

Kind regards,
The Bridge Team`

const passwordResetMailSubject = "Your Password Reset Code for TheBridge"

const passwordResetMailBody = `Hi %s,

We received a request to reset your TheBridge password.

Use the verification code below to continue:

%s

This verification code is valid for 5 minutes.

Enter the code on our website to reset your password and regain access to your account.
If you didn´t request this, you can safely ignore this email.

Kind regards,
TheBridge Team`

const helpMailSubject = "A User From TheBridge Needs Your Help"

const helpMailBody = `Dear %s,

We hope you are doing well!

%s whilst using TheBridge has asked a question and selected you as their go-to %s for help. Your insight would be greatly valued.

Question:
%s

When you are ready, please provide a detailed answer and remember to hit Reply All.

Thank you for sharing your knowledge and helping our community grow.

Warm regards,
TheBridge Team`
